package appfs

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_emailTemplates(t *testing.T) {
	for _, name := range []string{"_base.txt", "_base.gohtml", "digest.txt", "digest.gohtml"} {
		t.Run(name, func(t *testing.T) {
			data, err := fs.ReadFile(FS, EmailTemplatesDir+"/"+name)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
		})
	}
}
