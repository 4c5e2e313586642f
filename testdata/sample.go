package sample

func classify(n int) string {
	label := "none"
	if n > 0 {
		label = "positive"
	} else {
		label = "negative"
	}
	return label
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	if n >= 0 {
		return 1
	} else {
		return -1
	}
}
