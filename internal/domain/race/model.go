package race

// Classification names one of the parallel rankings within a stage race.
type Classification string

const (
	ClassificationStage     Classification = "stage"
	ClassificationGeneral   Classification = "general"
	ClassificationPoints    Classification = "points"
	ClassificationMountains Classification = "mountains"
	ClassificationYouth     Classification = "youth"
	ClassificationTeam      Classification = "team"
)

// StagePosition marks where a stage sits within the race; exactly one
// holds per stage and it drives the GC multiplier.
type StagePosition string

const (
	StageOrdinary      StagePosition = "ordinary"
	StageFirstRestDay  StagePosition = "first_rest_day"
	StageSecondRestDay StagePosition = "second_rest_day"
	StageFinal         StagePosition = "final"
)

// Row is one ranked line in a classification. Individual classifications
// carry RiderID; the team classification carries TeamName instead.
type Row struct {
	Rank     int
	RiderID  string
	TeamName string
}

// StageResult is one stage's scraped classification lists, keyed by
// (RaceSlug, Stage). Missing classifications are simply absent lists.
type StageResult struct {
	RaceSlug    string
	Stage       int
	Year        int
	Position    StagePosition
	Rankings    map[Classification][]Row
	Combativity []string
}

// Ranking returns the rows for one classification, nil when absent.
func (r StageResult) Ranking(c Classification) []Row {
	if r.Rankings == nil {
		return nil
	}
	return r.Rankings[c]
}
