package components

// Plan editor key bindings. Movement follows vi conventions; action keys
// mirror the first letter of each rebase instruction.
const (
	KeyQuit    = "q"
	KeyQuitAlt = "ctrl+c"

	KeyUp       = "k"
	KeyDown     = "j"
	KeyUpAlt    = "up"
	KeyDownAlt  = "down"
	KeyMoveUp   = "K"
	KeyMoveDown = "J"

	KeyPick   = "p"
	KeyReword = "r"
	KeyEdit   = "e"
	KeySquash = "s"
	KeyFixup  = "f"
	KeyDrop   = "d"

	KeyAutosquash = "a"
	KeyExecute    = "x"
	KeyEnter      = "enter"
)
