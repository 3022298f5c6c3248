//go:build !windows

package printer

const defaultBin = "lp"

func printArgs(name, settings, path string) []string {
	args := []string{"-d", name}
	if settings != "" {
		args = append(args, "-o", settings)
	}
	return append(args, path)
}
