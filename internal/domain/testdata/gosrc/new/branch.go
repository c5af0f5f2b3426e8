package main

func max(a, b int) int {
	if a >= b {
		return a
	}
	return b
}

func processValue(x int) int {
	if x > 100 {
		return 100
	} else if x < 0 {
		return 0
	} else {
		return x
	}
}

func checkStatus(status string) string {
	switch status {
	case "active":
		return "running"
	case "paused":
		return "waiting"
	case "inactive":
		return "stopped"
	default:
		return "unknown"
	}
}

func loopExample(n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += i
	}
	return sum
}
