package versioner

// SecondsPerYear is the length of a year used by TimeComponent.
const SecondsPerYear = 365 * 24 * 60 * 60

// TimeComponent scales the seconds between the initial commit and the
// feature branch origin by yearFactor per year, rounding half up.
// A negative interval counts as zero.
func TimeComponent(originDate, initialDate int64, yearFactor int) int {
	elapsed := originDate - initialDate
	if elapsed <= 0 {
		return 0
	}
	return int(float64(elapsed)*float64(yearFactor)/SecondsPerYear + 0.5)
}
