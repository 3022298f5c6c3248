//go:build windows

package printer

const defaultBin = "SumatraPDF"

func printArgs(name, settings, path string) []string {
	args := []string{"-print-to", name}
	if settings != "" {
		args = append(args, "-print-settings", settings)
	}
	return append(args, "-silent", path)
}
