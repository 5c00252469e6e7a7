package orchestra

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadRoster reads device addresses from a file, one per line. Blank lines
// and lines starting with '#' are skipped.
func LoadRoster(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var hosts []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		hosts = append(hosts, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(hosts) == 0 {
		return nil, fmt.Errorf("no devices listed in %s", path)
	}
	return hosts, nil
}
