package stac

// Link relation types items may carry.
const (
	RelSelf         = "self"
	RelParent       = "parent"
	RelCollection   = "collection"
	RelRoot         = "root"
	RelLicense      = "license"
	RelThumbnail    = "thumbnail"
	RelEnclosure    = "enclosure"
	RelTraceability = "version-history"
	RelDerivedFrom  = "derived_from"
)

// Link is one entry of an item's links array.
type Link struct {
	Rel   string
	Href  string
	Type  string
	Title string
}

func (l Link) render() map[string]any {
	out := map[string]any{
		"rel":  l.Rel,
		"href": l.Href,
	}
	if l.Type != "" {
		out["type"] = l.Type
	}
	if l.Title != "" {
		out["title"] = l.Title
	}
	return out
}

