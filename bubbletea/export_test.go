package bubbletea

// BlockSeparator exports blockSeparator for testing.
func BlockSeparator(prev, curr MessageBlock) string {
	return blockSeparator(prev, curr)
}

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// BlockFocus exports the focused block index for testing.
func BlockFocus(m Model) int {
	return m.blockFocus
}

// Blocks exports the rendered blocks for testing.
func Blocks(m Model) []MessageBlock {
	return m.blocks
}

// Sanitize exports sanitize for testing.
func Sanitize(s string) string {
	return sanitize(s)
}
