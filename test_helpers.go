package llmdispatch

// Test helper functions shared across test files

func intPtr(i int) *int {
	return &i
}

func floatPtr(f float64) *float64 {
	return &f
}
