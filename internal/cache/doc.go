// Package cache keeps synthesized audio so repeated utterances skip the
// synthesis backend. An in-memory LRU (L1) sits in front of a persistent,
// zstd-compressed disk store (L2).
package cache
