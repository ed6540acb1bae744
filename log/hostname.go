package log

import (
	"errors"
	"os"
	"strings"
)

const hostnameFile = "/etc/hostname"

func getHostname(location string) (string, error) {
	if location != "" {
		if hn, err := os.ReadFile(location); err == nil {
			return strings.ToLower(strings.TrimSpace(string(hn))), nil
		}
	}

	if hn, err := os.Hostname(); err == nil {
		return hn, nil
	}

	return "", errors.New("hostname couldn't be determined")
}
