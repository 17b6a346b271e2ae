package iocli

// IO консольный ввод/вывод клиента.
// Реализует io.Writer, поэтому через него же пишет логгер CLI.
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
	Write(p []byte) (n int, err error)
}
