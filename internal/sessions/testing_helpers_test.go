package sessions

import "os"

func writeRaw(path string, data string) error {
	return os.WriteFile(path, []byte(data), 0o644)
}
