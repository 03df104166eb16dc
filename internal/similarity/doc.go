// Package similarity provides small vector comparison helpers used when
// scoring batch items against each other, such as embedding vectors from a
// categorization service.
package similarity
