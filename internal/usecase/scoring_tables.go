package usecase

import "github.com/veloleague/veloleague/internal/domain/race"

// individualPointsTable awards ranks 1-20 of the stage placing and each
// individual classification; rank 21 and beyond score zero.
var individualPointsTable = [...]int{
	50, 44, 40, 36, 32, 30, 28, 26, 24, 22,
	20, 18, 16, 14, 12, 10, 8, 6, 4, 2,
}

// teamPointsTable awards ranks 1-5 of the team classification.
var teamPointsTable = [...]int{20, 16, 12, 8, 4}

// combativityBonus is a flat award, independent of rank.
const combativityBonus = 10

func individualPoints(rank int) int {
	if rank < 1 || rank > len(individualPointsTable) {
		return 0
	}
	return individualPointsTable[rank-1]
}

func teamPoints(rank int) int {
	if rank < 1 || rank > len(teamPointsTable) {
		return 0
	}
	return teamPointsTable[rank-1]
}

// gcMultiplier scales general-classification points by stage position:
// nothing on ordinary stages, then 1x, 2x and 3x at the first rest day,
// second rest day and final stage. Exactly one condition holds per stage.
func gcMultiplier(position race.StagePosition) int {
	switch position {
	case race.StageFirstRestDay:
		return 1
	case race.StageSecondRestDay:
		return 2
	case race.StageFinal:
		return 3
	}
	return 0
}

// finalStageMultiplier gates classification totals that pay out only once
// the race is decided: points, mountains and youth.
func finalStageMultiplier(position race.StagePosition) int {
	if position == race.StageFinal {
		return 1
	}
	return 0
}
