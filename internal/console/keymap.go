package console

// Key binding constants used in handleKey.
const (
	KeyQuit    = "q"
	KeyCtrlC   = "ctrl+c"
	KeyRecord  = "r"
	KeySpace   = " "
	KeyTab     = "tab"
	KeyUp      = "up"
	KeyDown    = "down"
	KeyJ       = "j"
	KeyK       = "k"
	KeyReload  = "d"
	KeyPublish = "p"
)
