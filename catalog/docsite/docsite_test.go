package docsite

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/refaktor/bindtrim/logger"
)

var testPages = map[string]string{
	"classes.html": `<html><body><dl>
<dd><a href="qobject.html">QObject</a></dd>
<dd><a href="qpaintdevice.html">QPaintDevice</a></dd>
<dd><a href="qwidget.html">QWidget</a></dd>
<dd><a href="qpushbutton.html">QPushButton</a></dd>
<dd><a href="qsize.html">QSize</a></dd>
<dd><a href="qlist.html">QList</a></dd>
<dd><a href="intro.html">Overview</a></dd>
<dd><a href="qwidget.html">QWidget</a></dd>
</dl></body></html>`,

	"qobject.html": `<html><body>
<p class="inherited-by">Inherited by: <a href="qwidget.html">QWidget</a></p>
</body></html>`,
	"qpaintdevice.html": `<html><body>
<p class="inherited-by">Inherited by: <a href="qwidget.html">QWidget</a></p>
</body></html>`,
	"qwidget.html": `<html><body>
<p class="inherits">Inherits: <a href="qobject.html">QObject</a> and <a href="qpaintdevice.html">QPaintDevice</a></p>
<p class="inherited-by">Inherited by: <a href="qpushbutton.html">QPushButton</a></p>
<div class="fn">virtual void <a href="qwidget-members.html#paintEvent">paintEvent</a> ( QPaintEvent event ) = 0</div>
<div class="fn">void <a href="qwidget-members.html#resize">resize</a> ( QSize size )</div>
</body></html>`,
	"qpushbutton.html": `<html><body>
<p class="inherits">Inherits: <a href="qwidget.html">QWidget</a></p>
</body></html>`,

	"qwidget-members.html": `<html><body><ul>
<li class="fn">void <a href="qwidget.html#resize">resize</a> ( QSize size )</li>
<li class="fn"><a href="qwidget.html#children">children</a> ( ) const : QObjectList</li>
<li class="fn">virtual void <a href="qwidget.html#paintEvent">paintEvent</a> ( T value ) = 0</li>
</ul></body></html>`,
	"qobject-members.html":      `<html></html>`,
	"qpaintdevice-members.html": `<html></html>`,
	"qpushbutton-members.html":  `<html></html>`,
	"qsize-members.html":        `<html></html>`,
	"qlist-members.html":        `<html></html>`,
	"qsize.html":                `<html></html>`,
	"qlist.html":                `<html></html>`,
}

func newTestSite(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		page, ok := testPages[r.URL.Path[1:]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestCatalog(t *testing.T, opts Options) *Catalog {
	t.Helper()
	srv, _ := newTestSite(t)
	c, err := New(srv.URL, opts)
	require.NoError(t, err)
	return c
}

func TestAllTypes(t *testing.T) {
	require := require.New(t)

	c := newTestCatalog(t, Options{})
	types, err := c.AllTypes()
	require.NoError(err)
	// "Overview" links elsewhere than its own page slug; the duplicate
	// QWidget entry collapses.
	require.Equal([]string{"QObject", "QPaintDevice", "QWidget", "QPushButton", "QSize", "QList"}, types)
}

func TestAncestorsDiamond(t *testing.T) {
	require := require.New(t)

	c := newTestCatalog(t, Options{})
	anc, err := c.Ancestors("QPushButton")
	require.NoError(err)
	require.Equal([]string{"QPushButton", "QWidget", "QObject", "QPaintDevice"}, anc)
}

func TestDescendantsTransitive(t *testing.T) {
	require := require.New(t)

	c := newTestCatalog(t, Options{})
	desc, err := c.Descendants("QObject")
	require.NoError(err)
	require.Equal([]string{"QObject", "QWidget", "QPushButton"}, desc)
}

func TestMembers(t *testing.T) {
	require := require.New(t)

	c := newTestCatalog(t, Options{})
	members, err := c.Members("QWidget")
	require.NoError(err)
	require.Equal([]string{"resize", "children", "paintEvent"}, members)
}

func TestRelatedTypes(t *testing.T) {
	require := require.New(t)

	var logBuf bytes.Buffer
	c := newTestCatalog(t, Options{Logger: &logger.Logger{Writer: &logBuf}})

	related, err := c.RelatedTypes("QWidget", "resize")
	require.NoError(err)
	require.Equal([]string{"QSize"}, related)

	// QObjectList is a typedef: it decodes to its element type and the
	// generic list type.
	related, err = c.RelatedTypes("QWidget", "children")
	require.NoError(err)
	require.Equal([]string{"QObject", "QList"}, related)

	// The template placeholder resolves to nothing, but is diagnosed.
	related, err = c.RelatedTypes("QWidget", "paintEvent")
	require.NoError(err)
	require.Empty(related)
	require.Contains(logBuf.String(), "unresolvable")
	require.Contains(logBuf.String(), "T")
}

func TestIsPureVirtual(t *testing.T) {
	require := require.New(t)

	c := newTestCatalog(t, Options{})
	pure, err := c.IsPureVirtual("QWidget", "paintEvent")
	require.NoError(err)
	require.True(pure)

	pure, err = c.IsPureVirtual("QWidget", "resize")
	require.NoError(err)
	require.False(pure)
}

func TestUnknownTypeIsNegativeAnswer(t *testing.T) {
	require := require.New(t)

	c := newTestCatalog(t, Options{})

	anc, err := c.Ancestors("Nope")
	require.NoError(err)
	require.Equal([]string{"Nope"}, anc)

	members, err := c.Members("Nope")
	require.NoError(err)
	require.Empty(members)

	is, err := c.IsType("Nope")
	require.NoError(err)
	require.False(is)
}

func TestPageCacheAvoidsRefetch(t *testing.T) {
	require := require.New(t)

	srv, hits := newTestSite(t)
	c, err := New(srv.URL, Options{})
	require.NoError(err)

	_, err = c.Members("QWidget")
	require.NoError(err)
	_, err = c.RelatedTypes("QWidget", "resize")
	require.NoError(err)

	after := hits.Load()
	_, err = c.Members("QWidget")
	require.NoError(err)
	_, err = c.RelatedTypes("QWidget", "resize")
	require.NoError(err)
	require.Equal(after, hits.Load(), "repeated queries must hit the page cache")
}

func TestDiskCacheSurvivesRestart(t *testing.T) {
	require := require.New(t)

	cacheDir := t.TempDir()
	srv, _ := newTestSite(t)
	c, err := New(srv.URL, Options{CacheDir: cacheDir})
	require.NoError(err)

	types, err := c.AllTypes()
	require.NoError(err)
	is, err := c.IsType("Nope")
	require.NoError(err)
	require.False(is)
	srv.Close()

	// A fresh instance against the dead server answers from disk,
	// negative answers included.
	c2, err := New(srv.URL, Options{CacheDir: cacheDir})
	require.NoError(err)
	types2, err := c2.AllTypes()
	require.NoError(err)
	require.Equal(types, types2)
	is, err = c2.IsType("Nope")
	require.NoError(err)
	require.False(is)
}

func TestSlugSchemes(t *testing.T) {
	require := require.New(t)
	require.Equal("qabstractitemmodel", LowerSlug("QAbstractItemModel"))
	require.Equal("q_abstract_item_model", SnakeSlug("QAbstractItemModel"))
}
