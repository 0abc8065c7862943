/*
Package docsite derives a binding-layer type catalog from a generated
API documentation site.

This might seem like a silly place to get the data, but the docs are
themselves generated by parsing the toolkit's source, so they carry
more than enough internal structure to support the catalog queries:

  - <root>/classes.html links every documented type as
    <a href="SLUG.html">TypeName</a>, where SLUG is the type's page
    slug.
  - <root>/SLUG.html is the type's page. An element with class
    "inherits" links the direct ancestors, an element with class
    "inherited-by" links the direct descendants, and elements with
    class "fn" carry member signatures; the literal "= 0" in a
    signature marks a pure virtual declaration.
  - <root>/SLUG-members.html lists all members as elements with class
    "fn", each linking the member name followed by the
    space-separated signature text.

Pages are fetched over HTTP with a bounded in-memory cache and an
optional on-disk cache (negative lookups are cached too, as marker
files). A page that does not exist is a negative catalog answer, never
an error; only transport failures propagate.
*/
package docsite

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/iancoleman/strcase"
	"golang.org/x/net/html"

	"github.com/refaktor/bindtrim/logger"
)

// LowerSlug is the default page slug scheme: "QAbstractItemModel"
// becomes "qabstractitemmodel".
func LowerSlug(typ string) string { return strings.ToLower(typ) }

// SnakeSlug is the slug scheme of doc generators that use snake_case
// paths: "QAbstractItemModel" becomes "q_abstract_item_model".
func SnakeSlug(typ string) string { return strcase.ToSnake(typ) }

type Options struct {
	// On-disk page cache directory. Empty disables the disk cache.
	CacheDir string
	// Maximum pages held in memory. Defaults to 512.
	PageCacheSize int
	// HTTP client to fetch with. Defaults to http.DefaultClient.
	Client *http.Client
	// Page slug scheme. Defaults to [LowerSlug].
	Slug func(typ string) string
	// Typedef decoding: a name ending in ListSuffix that is not itself
	// a type resolves to its element type plus ListGeneric. Defaults
	// to "List" and "QList".
	ListSuffix  string
	ListGeneric string
	// DisableListTypedefs turns off typedef decoding entirely.
	DisableListTypedefs bool

	Logger *logger.Logger
}

// Catalog implements catalog.Catalog against a documentation site.
// Safe for concurrent queries, so it can sit behind a prefetching
// catalog.Memo.
type Catalog struct {
	rootURL *url.URL
	opts    Options
	pages   *lru.Cache[string, page]

	isTypeMu sync.Mutex
	isType   map[string]bool
}

type page struct {
	doc      *html.Node
	notFound bool
}

func New(rootURL string, opts Options) (*Catalog, error) {
	if !strings.HasSuffix(rootURL, "/") {
		rootURL += "/"
	}
	root, err := url.Parse(rootURL)
	if err != nil {
		return nil, fmt.Errorf("invalid root URL: %w", err)
	}
	if opts.PageCacheSize == 0 {
		opts.PageCacheSize = 512
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Slug == nil {
		opts.Slug = LowerSlug
	}
	if opts.DisableListTypedefs {
		opts.ListSuffix = ""
		opts.ListGeneric = ""
	} else if opts.ListSuffix == "" && opts.ListGeneric == "" {
		opts.ListSuffix = "List"
		opts.ListGeneric = "QList"
	}
	pages, err := lru.New[string, page](opts.PageCacheSize)
	if err != nil {
		return nil, err
	}
	return &Catalog{
		rootURL: root,
		opts:    opts,
		pages:   pages,
		isType:  map[string]bool{},
	}, nil
}

var errNotFound = errors.New("page not found")

// readPage fetches a page relative to the root URL, consulting the
// in-memory cache, then the disk cache, then the network. A 404 is
// remembered (as a marker file when the disk cache is enabled) and
// reported as errNotFound.
func (c *Catalog) readPage(name string) (*html.Node, error) {
	if p, ok := c.pages.Get(name); ok {
		if p.notFound {
			return nil, errNotFound
		}
		return p.doc, nil
	}

	data, err := c.readPageData(name)
	if errors.Is(err, errNotFound) {
		c.pages.Add(name, page{notFound: true})
		return nil, errNotFound
	} else if err != nil {
		return nil, err
	}
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %v: %w", name, err)
	}
	c.pages.Add(name, page{doc: doc})
	return doc, nil
}

func (c *Catalog) readPageData(name string) ([]byte, error) {
	var cacheFile, missingFile string
	if c.opts.CacheDir != "" {
		if err := os.MkdirAll(c.opts.CacheDir, 0o777); err != nil {
			return nil, err
		}
		cacheFile = filepath.Join(c.opts.CacheDir, url.QueryEscape(name))
		missingFile = filepath.Join(c.opts.CacheDir, "missing-"+url.QueryEscape(name))
		if data, err := os.ReadFile(cacheFile); err == nil {
			return data, nil
		}
		if _, err := os.Stat(missingFile); err == nil {
			return nil, errNotFound
		}
	}

	pageURL := c.rootURL.JoinPath(name).String()
	resp, err := c.opts.Client.Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %v: %w", pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		if missingFile != "" {
			if f, err := os.Create(missingFile); err == nil {
				f.Close()
			}
		}
		return nil, errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %v: unexpected status %v", pageURL, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %v: %w", pageURL, err)
	}
	if cacheFile != "" {
		if err := os.WriteFile(cacheFile, data, 0o666); err != nil {
			c.opts.Logger.Warnf("cannot cache %v: %v", name, err)
		}
	}
	return data, nil
}

func (c *Catalog) AllTypes() ([]string, error) {
	doc, err := c.readPage("classes.html")
	if errors.Is(err, errNotFound) {
		return nil, fmt.Errorf("documentation site has no class index")
	} else if err != nil {
		return nil, err
	}
	var types []string
	seen := map[string]struct{}{}
	for _, link := range linkedTypes(doc, c.opts.Slug) {
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		types = append(types, link)
	}
	return types, nil
}

// IsType reports whether name has a members page, i.e. is an actual
// cataloged type rather than a typedef or template placeholder.
func (c *Catalog) IsType(name string) (bool, error) {
	c.isTypeMu.Lock()
	is, ok := c.isType[name]
	c.isTypeMu.Unlock()
	if ok {
		return is, nil
	}
	_, err := c.readPage(c.opts.Slug(name) + "-members.html")
	if err != nil && !errors.Is(err, errNotFound) {
		return false, err
	}
	is = err == nil
	c.isTypeMu.Lock()
	c.isType[name] = is
	c.isTypeMu.Unlock()
	return is, nil
}

// canonicalNames decodes a name appearing in documentation into the
// cataloged types it implies. Typedefs like "QObjectList" resolve to
// their element type and the generic list type; template placeholders
// and unknown names resolve to nothing, logged for auditability.
func (c *Catalog) canonicalNames(name string) ([]string, error) {
	is, err := c.IsType(name)
	if err != nil {
		return nil, err
	}
	if is {
		return []string{name}, nil
	}
	if c.opts.ListSuffix != "" && strings.HasSuffix(name, c.opts.ListSuffix) && len(name) > len(c.opts.ListSuffix) {
		var names []string
		elem := strings.TrimSuffix(name, c.opts.ListSuffix)
		for _, n := range []string{elem, c.opts.ListGeneric} {
			if n == "" {
				continue
			}
			is, err := c.IsType(n)
			if err != nil {
				return nil, err
			}
			if is {
				names = append(names, n)
			}
		}
		return names, nil
	}
	c.opts.Logger.Warnf("dropping unresolvable type name %v", name)
	return nil, nil
}

// directRelatives extracts the types linked from the class attribute
// (e.g. "inherits" or "inherited-by") on typ's page.
func (c *Catalog) directRelatives(typ, class string) ([]string, error) {
	doc, err := c.readPage(c.opts.Slug(typ) + ".html")
	if errors.Is(err, errNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var relatives []string
	for _, node := range elementsWithClass(doc, class) {
		for _, name := range linkedTypes(node, c.opts.Slug) {
			canon, err := c.canonicalNames(name)
			if err != nil {
				return nil, err
			}
			relatives = append(relatives, canon...)
		}
	}
	return relatives, nil
}

// transitiveRelatives walks the direct-relative relation to a fixpoint,
// nearest-first. The relation can form diamonds, so a visited set
// guards against revisits.
func (c *Catalog) transitiveRelatives(typ, class string) ([]string, error) {
	result := []string{typ}
	seen := map[string]struct{}{typ: {}}
	for i := 0; i < len(result); i++ {
		direct, err := c.directRelatives(result[i], class)
		if err != nil {
			return nil, err
		}
		for _, rel := range direct {
			if _, ok := seen[rel]; ok {
				continue
			}
			seen[rel] = struct{}{}
			result = append(result, rel)
		}
	}
	return result, nil
}

func (c *Catalog) Ancestors(typ string) ([]string, error) {
	return c.transitiveRelatives(typ, "inherits")
}

func (c *Catalog) Descendants(typ string) ([]string, error) {
	return c.transitiveRelatives(typ, "inherited-by")
}

func (c *Catalog) Members(typ string) ([]string, error) {
	doc, err := c.readPage(c.opts.Slug(typ) + "-members.html")
	if errors.Is(err, errNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var members []string
	seen := map[string]struct{}{}
	for _, node := range elementsWithClass(doc, "fn") {
		name, ok := firstLinkText(node)
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		members = append(members, name)
	}
	return members, nil
}

func (c *Catalog) RelatedTypes(typ, member string) ([]string, error) {
	doc, err := c.readPage(c.opts.Slug(typ) + "-members.html")
	if errors.Is(err, errNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var related []string
	seen := map[string]struct{}{}
	for _, node := range elementsWithClass(doc, "fn") {
		name, ok := firstLinkText(node)
		if !ok || name != member {
			continue
		}
		// The signature text can contain plenty of native junk
		// (template instantiations, nested type paths); pick out the
		// words that look like type names and let canonicalization
		// sort out the rest.
		for _, word := range strings.Fields(nodeText(node)) {
			word = strings.TrimSuffix(word, ",")
			word, _, _ = strings.Cut(word, "::")
			if !looksLikeTypeName(word) {
				continue
			}
			canon, err := c.canonicalNames(word)
			if err != nil {
				return nil, err
			}
			for _, n := range canon {
				if _, dup := seen[n]; dup {
					continue
				}
				seen[n] = struct{}{}
				related = append(related, n)
			}
		}
	}
	return related, nil
}

func (c *Catalog) IsPureVirtual(typ, member string) (bool, error) {
	doc, err := c.readPage(c.opts.Slug(typ) + ".html")
	if errors.Is(err, errNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	for _, node := range elementsWithClass(doc, "fn") {
		name, ok := firstLinkText(node)
		if !ok || name != member {
			continue
		}
		if strings.Contains(nodeText(node), "= 0") {
			return true, nil
		}
	}
	return false, nil
}

func looksLikeTypeName(word string) bool {
	if word == "" {
		return false
	}
	for i, r := range word {
		if i == 0 && !unicode.IsUpper(r) {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
