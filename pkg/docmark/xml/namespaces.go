package xml

// Namespace URIs used by WordprocessingML packages.
const (
	// NamespaceXML is bound to the reserved xml prefix.
	NamespaceXML = "http://www.w3.org/XML/1998/namespace"
	// NamespaceWordprocessingML is the main w: namespace.
	NamespaceWordprocessingML = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	// NamespacePackageRelationships is the namespace of .rels parts.
	NamespacePackageRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
)

// Relationship types resolved when opening a template.
const (
	RelationshipOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RelationshipComments       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments"
)

// W returns a name in the WordprocessingML namespace with the conventional
// w prefix.
func W(local string) Name {
	return Name{Prefix: "w", Local: local, Space: NamespaceWordprocessingML}
}
