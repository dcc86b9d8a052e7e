// Package testeng is a conformance and precision harness for numeric
// kernels: FFTs, DCTs and element-wise vector, scalar and object functions
// in integer, fixed-point and floating-point formats.
//
// Functions under test are registered by ID and driven through SEQ files.
// Transform files list rows of
//
//	<caseType> <N> <scaleMethod> <inputFile> <referenceFile> <minSINAD>
//
// where the input is raw little-endian int16 PCM and the reference raw
// float64 output of the transform of input·2^-15. Each frame is converted
// to the function's format with a block exponent, transformed, converted
// back and scored by SINAD; the case passes when its worst frame meets
// minSINAD. Data-driven files list cases of inputs with per-element lower
// and upper bounds.
//
// Every call runs on vectors surrounded by canary guards at a fuzzed
// misalignment, with checksums of inputs that must not change and of the
// twiddle tables the function reads. A function that writes outside its
// output fails with a corruption category, distinct from accuracy failures.
// Functions that are not built or need CPU features the host lacks are
// reported NOT TESTED.
//
// Basic usage:
//
//	reg := testeng.Samples()
//	rc := testeng.NewContext(reg, testeng.DefaultConfig(), nil)
//	defer rc.Close()
//
//	rep, err := testeng.RunTestFile(ctx, rc, "cfft_q15", testeng.Descriptor{}, "cfft_q15.seq",
//		testeng.Options{Fullness: testeng.Full})
package testeng
