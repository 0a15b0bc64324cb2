package node

type DocumentStandaloneType int

const (
	StandaloneExplicitYes DocumentStandaloneType = 1
	StandaloneExplicitNo  DocumentStandaloneType = 0
	StandaloneNoXMLDecl   DocumentStandaloneType = -1
	StandaloneImplicitNo  DocumentStandaloneType = -2
)

// Document is the result of parsing one markup file. The root record
// holds the document element (and any top-level comments) keyed by
// tag name, e.g. "CMapData" or "Drawable".
type Document struct {
	version    string
	encoding   string
	standalone DocumentStandaloneType
	root       *Record
}

func NewDocument() *Document {
	return &Document{
		version:    "1.0",
		encoding:   "UTF-8",
		standalone: StandaloneImplicitNo,
		root:       NewRecord(),
	}
}

func NewDocumentWithOptions(version, encoding string, standalone DocumentStandaloneType) *Document {
	return &Document{
		version:    version,
		encoding:   encoding,
		standalone: standalone,
		root:       NewRecord(),
	}
}

func (d *Document) Version() string {
	return d.version
}

func (d *Document) SetVersion(v string) {
	d.version = v
}

func (d *Document) Encoding() string {
	return d.encoding
}

func (d *Document) SetEncoding(enc string) {
	d.encoding = enc
}

func (d *Document) Standalone() DocumentStandaloneType {
	return d.standalone
}

func (d *Document) SetStandalone(standalone DocumentStandaloneType) {
	d.standalone = standalone
}

// HasXMLDecl reports whether the document should be written with an
// XML declaration
func (d *Document) HasXMLDecl() bool {
	return d.standalone != StandaloneNoXMLDecl
}

func (d *Document) Root() *Record {
	return d.root
}

// DocumentElement returns the name and the node of the first element
// under the document root
func (d *Document) DocumentElement() (string, Node) {
	for name, n := range d.root.Fields() {
		if IsSpecial(name) || IsAttribute(name) {
			continue
		}
		return name, n
	}
	return "", nil
}
