// Package distance implements the composite kanji distance.
//
// The distance between two feature vectors is a weighted sum of three terms,
// each bounded in [0, 1]:
//
//   - Geometric: Euclidean distance of the geometric blocks scaled by 1/√N,
//     with mean angles compared around the circle;
//   - StrokeCount: absolute difference of the normalized stroke counts;
//   - Radical: 1 - Jaccard overlap of the radical sets.
//
// # Usage
//
//	terms := distance.Compute(a.Geometric, b.Geometric, slots, a.StrokeCount, b.StrokeCount, a.Radicals, b.Radicals)
//	d := terms.Weighted(weights)
package distance
