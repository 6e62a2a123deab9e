package extract

import (
	"errors"
	"strings"
	"unicode/utf8"
)

func extractPlain(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("text file is not valid UTF-8")
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}
