package rider

// Rider is immutable reference data owned by the external catalog.
type Rider struct {
	NameID  string
	Name    string
	Team    string
	Country string
}

// SeasonRanking carries a rider's UCI ranking points for one season.
// StartingPoints is the (negative) seed the marginal-gains variant
// measures improvement against.
type SeasonRanking struct {
	RiderID        string
	Season         int
	Points         int
	StartingPoints int
}
