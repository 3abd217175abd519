package slab

// testSBSize is the one superblock size every test in this package uses.
// globalSBSize latches on first use and rejects later SizeClasses created
// with a different size, so the whole test binary standardizes on this
// value rather than each test picking its own.
const testSBSize = 256

func testConfig(debug bool) Config {
	return Config{SBSize: testSBSize, DescBatchSize: 4, Debug: debug}
}
