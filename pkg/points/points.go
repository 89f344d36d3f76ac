package points

// championship points awarded for positions 1-10
var table = [10]int{25, 18, 15, 12, 10, 8, 6, 4, 2, 1}

// For returns the championship points for a finishing position.
// Positions outside [1,10] score zero.
func For(position int) int {
	if position < 1 || position > len(table) {
		return 0
	}
	return table[position-1]
}
