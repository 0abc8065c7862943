package bindtrim

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/refaktor/bindtrim/catalog/catalogtest"
	"github.com/refaktor/bindtrim/closure"
	"github.com/refaktor/bindtrim/logger"
	"github.com/refaktor/bindtrim/policy"
)

func TestFindRejections(t *testing.T) {
	require := require.New(t)

	cat := &catalogtest.Fake{Types: map[string]catalogtest.Type{
		"QObject": {Members: []string{"deleteLater"}},
		"QWidget": {
			Parents: []string{"QObject"},
			Members: []string{"resize", "paintEvent", "grabMouse"},
			Related: map[string][]string{"resize": {"QSize"}},
		},
		"QSize":  {Members: []string{"transpose"}},
		"QTimer": {Members: []string{"start"}},
	}}

	var logBuf bytes.Buffer
	rejections, err := FindRejections(&Config{
		AppRoot: filepath.Join("testdata", "app"),
		Catalog: cat,
		Policy:  policy.New(),
		Logger:  &logger.Logger{Writer: &logBuf},
	})
	require.NoError(err)

	// QWidget and resize are used directly, paintEvent by name via a
	// string constant; QSize flows through resize's signature; QTimer
	// is unreachable.
	require.Equal([]closure.Rejection{
		{Type: "QObject", Member: "deleteLater", Kind: closure.KindFunction},
		{Type: "QObject", Member: "deleteLater", Kind: closure.KindField},
		{Type: "QSize", Member: "transpose", Kind: closure.KindFunction},
		{Type: "QSize", Member: "transpose", Kind: closure.KindField},
		{Type: "QTimer", Kind: closure.KindType},
		{Type: "QWidget", Member: "grabMouse", Kind: closure.KindFunction},
		{Type: "QWidget", Member: "grabMouse", Kind: closure.KindField},
	}, rejections)

	require.Contains(logBuf.String(), "useful type QWidget")
}

func TestFindRejectionsRequiresCatalog(t *testing.T) {
	_, err := FindRejections(&Config{AppRoot: "testdata"})
	require.Error(t, err)
}
