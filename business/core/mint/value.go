package mint

// Set of point values a coin can be assigned at creation time.
const (
	valueCommon = 1
	valueRare   = 15
	valueEpic   = 50
)

// zerosCount returns the number of leading '0' characters in the
// hex encoded digest.
func zerosCount(digest string) int {
	var count int
	for _, r := range digest {
		if r != '0' {
			break
		}
		count++
	}
	return count
}

// Value maps a hex digest to its point value. The more leading zero
// digits a digest carries, the harder it was to find and the more the
// coin is worth.
func Value(digest string) int {
	switch zeros := zerosCount(digest); {
	case zeros <= 4:
		return valueCommon
	case zeros <= 6:
		return valueRare
	default:
		return valueEpic
	}
}
