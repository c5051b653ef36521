package errors

// CapacityError reports that an append would cross the mapped region's
// fixed size. It embeds baseError and adds the accounting that explains
// exactly why the write did not fit.
type CapacityError struct {
	*baseError
	needed      int64 // Bytes the record would have occupied.
	writeOffset int64 // Cursor position at the time of the rejected write.
	fileSize    int64 // Size of the mapped region.
}

// NewCapacityError creates a new capacity-exhausted error.
func NewCapacityError(needed, writeOffset, fileSize int64) *CapacityError {
	return &CapacityError{
		baseError:   NewBaseError(nil, ErrorCodeCapacityExhausted, "append would exceed the mapped region"),
		needed:      needed,
		writeOffset: writeOffset,
		fileSize:    fileSize,
	}
}

// Needed returns the number of bytes the rejected record would have occupied.
func (ce *CapacityError) Needed() int64 {
	return ce.needed
}

// WriteOffset returns the cursor position at the time of the rejected write.
func (ce *CapacityError) WriteOffset() int64 {
	return ce.writeOffset
}

// FileSize returns the size of the mapped region.
func (ce *CapacityError) FileSize() int64 {
	return ce.fileSize
}

// Remaining returns how many bytes were left in the region when the write was rejected.
func (ce *CapacityError) Remaining() int64 {
	return ce.fileSize - ce.writeOffset
}
