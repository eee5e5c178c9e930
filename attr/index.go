package attr

// Index identifies the entity (usually a graph node) an attribute value is attached to.
// Indices are dense: a host hands them out from zero upward.
type Index uint32

// slotBlockSize is the number of values held by one storage block.
const slotBlockSize = 64

// block returns the block number and the offset inside that block for i.
func (i Index) block() (int, int) {
	return int(i) / slotBlockSize, int(i) % slotBlockSize
}
