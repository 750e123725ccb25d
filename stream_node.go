package gofst

import "github.com/kaitu-io/gofst/internal/fstnode"

// Thin adapters over internal/fstnode's lazy, binary-search-based node
// accessors, kept in one file so stream.go reads as pure traversal logic.

func numTransitionsImpl(data []byte, addr uint64) (int, error) {
	return fstnode.NumTransitions(data, addr)
}

func isFinalImpl(data []byte, addr uint64) (bool, uint64, error) {
	return fstnode.IsFinalNode(data, addr)
}

func transitionAtImpl(data []byte, addr uint64, i int) (fstnode.Transition, error) {
	return fstnode.TransitionAt(data, addr, i)
}

func findTransitionImpl(data []byte, addr uint64, b byte) (fstnode.Transition, bool, error) {
	return fstnode.FindTransition(data, addr, b)
}

func transitionInsertIndex(data []byte, addr uint64, b byte) (int, error) {
	idx, _, err := fstnode.TransitionIndex(data, addr, b)
	return idx, err
}

func transitionIndexOf(data []byte, addr uint64, b byte) (int, error) {
	idx, _, err := fstnode.TransitionIndex(data, addr, b)
	return idx, err
}
