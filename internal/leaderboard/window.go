package leaderboard

// Window returns the rows within radius of center together with the
// boundaries [start, end) in the full ranking, so that the true rank of a
// windowed row i is start+i+1. An out of range center yields an empty window.
func Window[T any](ranking []T, center, radius int) ([]T, int, int) {
	if len(ranking) == 0 || center < 0 || center >= len(ranking) {
		return []T{}, 0, 0
	}
	if radius < 0 {
		radius = 0
	}
	start := max(0, center-radius)
	end := min(len(ranking), center+radius+1)
	return ranking[start:end], start, end
}
