package book

import "errors"

// ErrInconsistent is returned by CheckConsistency when the side books and
// the order index disagree.
var ErrInconsistent = errors.New("book state inconsistent")
