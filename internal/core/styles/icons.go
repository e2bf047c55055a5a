package styles

var (
	IconDone    = "✔"
	IconOpen    = "○"
	IconSwatch  = "●"
	IconSynced  = "✓"
	IconSyncing = "↻"
	IconDirty   = "!"
)
