// Package processor locates the fragments of a document that the
// converter segments, and splices converted fragments back.
package processor

import "github.com/ali-185/DualLang"

// ContentProcessor is an alias to the main package interface.
type ContentProcessor = duallang.ContentProcessor

// Fragment is an alias to the main package type.
type Fragment = duallang.Fragment
