package fsOp

import (
	"io/ioutil"
	"os"

	"github.com/Avishs-nd/MuskCult/fs"
)

// Reads the full content of a file.
func ReadFile(afs fs.FS, path fs.AbsolutePath) ([]byte, error) {
	file, err := afs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	body, err := ioutil.ReadAll(file)
	return body, fs.NormalizeIOError(err)
}
