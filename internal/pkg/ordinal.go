package pkg

import "strconv"

// Ordinal - formats n with its English ordinal suffix (1st, 2nd, 3rd,
// 4th, ...). 11 through 13 take "th" regardless of their last digit.
func Ordinal(n int) string {
	number := strconv.Itoa(n)

	if mod100 := n % 100; mod100 >= 11 && mod100 <= 13 {
		return number + "th"
	}

	switch n % 10 {
	case 1:
		return number + "st"
	case 2:
		return number + "nd"
	case 3:
		return number + "rd"
	default:
		return number + "th"
	}
}
