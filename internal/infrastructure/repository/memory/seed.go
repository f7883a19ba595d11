package memory

import (
	"time"

	"github.com/veloleague/veloleague/internal/domain/auction"
	"github.com/veloleague/veloleague/internal/domain/game"
	"github.com/veloleague/veloleague/internal/domain/race"
	"github.com/veloleague/veloleague/internal/domain/rider"
)

const (
	GameIDTourClassic  = "tour-2026-classic"
	GameIDGiroMarginal = "giro-2026-marginal-gains"
	RaceSlugTour       = "tour-de-france"
	RaceSlugGiro       = "giro-d-italia"
)

func SeedGames() []game.Game {
	return []game.Game{
		{
			ID:            GameIDTourClassic,
			Name:          "Tour de France 2026",
			Season:        2026,
			Type:          game.TypeClassic,
			BudgetCap:     100,
			MinRosterSize: 28,
			MaxRosterSize: 32,
			CountingRaces: []game.CountingRace{{RaceSlug: RaceSlugTour}},
		},
		{
			ID:            GameIDGiroMarginal,
			Name:          "Giro Marginal Gains 2026",
			Season:        2026,
			Type:          game.TypeMarginalGains,
			BudgetCap:     100,
			MinRosterSize: 28,
			MaxRosterSize: 32,
			CountingRaces: []game.CountingRace{{RaceSlug: RaceSlugGiro}},
		},
	}
}

func SeedPeriods() []auction.Period {
	return []auction.Period{
		{
			GameID:    GameIDTourClassic,
			Name:      "opening-auction",
			StartDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 6, 14, 23, 59, 59, 0, time.UTC),
			Status:    auction.PeriodStatusOpen,
		},
		{
			GameID:    GameIDGiroMarginal,
			Name:      "opening-auction",
			StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 4, 30, 23, 59, 59, 0, time.UTC),
			Status:    auction.PeriodStatusOpen,
		},
	}
}

func SeedRiders() []rider.Rider {
	return []rider.Rider{
		{NameID: "tadej-pogacar", Name: "Tadej Pogacar", Team: "UAE Team Emirates", Country: "SI"},
		{NameID: "jonas-vingegaard", Name: "Jonas Vingegaard", Team: "Visma Lease a Bike", Country: "DK"},
		{NameID: "remco-evenepoel", Name: "Remco Evenepoel", Team: "Soudal Quick-Step", Country: "BE"},
		{NameID: "primoz-roglic", Name: "Primoz Roglic", Team: "Red Bull Bora", Country: "SI"},
		{NameID: "mathieu-van-der-poel", Name: "Mathieu van der Poel", Team: "Alpecin-Deceuninck", Country: "NL"},
		{NameID: "wout-van-aert", Name: "Wout van Aert", Team: "Visma Lease a Bike", Country: "BE"},
		{NameID: "jasper-philipsen", Name: "Jasper Philipsen", Team: "Alpecin-Deceuninck", Country: "BE"},
		{NameID: "mads-pedersen", Name: "Mads Pedersen", Team: "Lidl-Trek", Country: "DK"},
		{NameID: "juan-ayuso", Name: "Juan Ayuso", Team: "UAE Team Emirates", Country: "ES"},
		{NameID: "carlos-rodriguez", Name: "Carlos Rodriguez", Team: "INEOS Grenadiers", Country: "ES"},
		{NameID: "adam-yates", Name: "Adam Yates", Team: "UAE Team Emirates", Country: "GB"},
		{NameID: "enric-mas", Name: "Enric Mas", Team: "Movistar Team", Country: "ES"},
	}
}

func SeedSeasonRankings() []rider.SeasonRanking {
	return []rider.SeasonRanking{
		{RiderID: "tadej-pogacar", Season: 2026, Points: 11200, StartingPoints: 10500},
		{RiderID: "jonas-vingegaard", Season: 2026, Points: 7400, StartingPoints: 6900},
		{RiderID: "remco-evenepoel", Season: 2026, Points: 6800, StartingPoints: 7100},
		{RiderID: "primoz-roglic", Season: 2026, Points: 5200, StartingPoints: 5600},
		{RiderID: "mathieu-van-der-poel", Season: 2026, Points: 4900, StartingPoints: 4300},
		{RiderID: "wout-van-aert", Season: 2026, Points: 4100, StartingPoints: 4000},
		{RiderID: "jasper-philipsen", Season: 2026, Points: 3900, StartingPoints: 3400},
		{RiderID: "mads-pedersen", Season: 2026, Points: 3700, StartingPoints: 3600},
		{RiderID: "juan-ayuso", Season: 2026, Points: 3300, StartingPoints: 2700},
		{RiderID: "carlos-rodriguez", Season: 2026, Points: 2800, StartingPoints: 2900},
		{RiderID: "adam-yates", Season: 2026, Points: 2600, StartingPoints: 2500},
		{RiderID: "enric-mas", Season: 2026, Points: 2400, StartingPoints: 2300},
	}
}

func SeedStageResults() []race.StageResult {
	return []race.StageResult{
		{
			RaceSlug: RaceSlugTour,
			Stage:    1,
			Year:     2026,
			Position: race.StageOrdinary,
			Rankings: map[race.Classification][]race.Row{
				race.ClassificationStage: {
					{Rank: 1, RiderID: "jasper-philipsen"},
					{Rank: 2, RiderID: "mads-pedersen"},
					{Rank: 3, RiderID: "wout-van-aert"},
					{Rank: 4, RiderID: "mathieu-van-der-poel"},
				},
				race.ClassificationGeneral: {
					{Rank: 1, RiderID: "jasper-philipsen"},
					{Rank: 2, RiderID: "mads-pedersen"},
					{Rank: 3, RiderID: "wout-van-aert"},
				},
				race.ClassificationTeam: {
					{Rank: 1, TeamName: "Alpecin-Deceuninck"},
					{Rank: 2, TeamName: "Lidl-Trek"},
					{Rank: 3, TeamName: "Visma Lease a Bike"},
				},
			},
			Combativity: []string{"wout-van-aert"},
		},
		{
			RaceSlug: RaceSlugTour,
			Stage:    10,
			Year:     2026,
			Position: race.StageFirstRestDay,
			Rankings: map[race.Classification][]race.Row{
				race.ClassificationStage: {
					{Rank: 1, RiderID: "tadej-pogacar"},
					{Rank: 2, RiderID: "jonas-vingegaard"},
					{Rank: 3, RiderID: "remco-evenepoel"},
				},
				race.ClassificationGeneral: {
					{Rank: 1, RiderID: "tadej-pogacar"},
					{Rank: 2, RiderID: "jonas-vingegaard"},
					{Rank: 3, RiderID: "remco-evenepoel"},
					{Rank: 4, RiderID: "juan-ayuso"},
				},
				race.ClassificationTeam: {
					{Rank: 1, TeamName: "UAE Team Emirates"},
					{Rank: 2, TeamName: "Visma Lease a Bike"},
				},
			},
		},
		{
			RaceSlug: RaceSlugTour,
			Stage:    21,
			Year:     2026,
			Position: race.StageFinal,
			Rankings: map[race.Classification][]race.Row{
				race.ClassificationStage: {
					{Rank: 1, RiderID: "jasper-philipsen"},
					{Rank: 2, RiderID: "wout-van-aert"},
				},
				race.ClassificationGeneral: {
					{Rank: 1, RiderID: "tadej-pogacar"},
					{Rank: 2, RiderID: "jonas-vingegaard"},
					{Rank: 3, RiderID: "remco-evenepoel"},
				},
				race.ClassificationPoints: {
					{Rank: 1, RiderID: "jasper-philipsen"},
					{Rank: 2, RiderID: "mads-pedersen"},
				},
				race.ClassificationMountains: {
					{Rank: 1, RiderID: "tadej-pogacar"},
					{Rank: 2, RiderID: "jonas-vingegaard"},
				},
				race.ClassificationYouth: {
					{Rank: 1, RiderID: "juan-ayuso"},
					{Rank: 2, RiderID: "carlos-rodriguez"},
				},
				race.ClassificationTeam: {
					{Rank: 1, TeamName: "UAE Team Emirates"},
					{Rank: 2, TeamName: "Visma Lease a Bike"},
					{Rank: 3, TeamName: "Soudal Quick-Step"},
				},
			},
			Combativity: []string{"tadej-pogacar"},
		},
	}
}
