package main

func allOf(values ...bool) bool {
	for _, v := range values {
		if !v {
			return false
		}
	}
	return true
}
