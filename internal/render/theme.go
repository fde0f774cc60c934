package render

// Theme holds colors for callgraph and CFG rendering.
type Theme struct {
	Background string
	NodeFill   string
	NodeBorder string
	TextColor  string

	// Call-edge colors, keyed by invoke-* kind (internal/render/callgraph.go).
	EdgeDirect     string // invoke-static / invoke-direct
	EdgeDispatch   string // invoke-virtual
	EdgeSuper      string // invoke-super
	EdgeInterface  string // invoke-interface
	EdgeUnresolved string // invoke target the dex set doesn't define

	// CFG branch colors (internal/render/cfg.go), distinct from the call-edge
	// set above: a method's own basic-block graph has nothing to do with
	// which classes its invoke-* targets live in.
	EdgeEntry string // entry block border, and the taken (true) branch
	EdgeFalse string // the not-taken (false) branch

	// Node accents.
	StubFill     string // terminal block fill (return/throw)
	ExternalText string // external / unresolved targets

	// Cluster styling.
	ClusterBorder string // subgraph cluster border
	ClusterLabel  string // subgraph cluster label text
}

// NASA is the NASA/Bauhaus theme: geometric, monochrome, sparse color.
var NASA = Theme{
	Background: "#F5F5F5",
	NodeFill:   "white",
	NodeBorder: "#1A1A1A",
	TextColor:  "#1A1A1A",

	EdgeDirect:     "#424242", // dark gray
	EdgeDispatch:   "#9E9E9E", // gray
	EdgeSuper:      "#E65100", // deep orange
	EdgeInterface:  "#00695C", // teal
	EdgeUnresolved: "#FC3D21", // NASA red

	EdgeEntry: "#0B3D91", // NASA blue
	EdgeFalse: "#FC3D21", // NASA red

	StubFill:     "#ECEFF1", // blue-gray 50
	ExternalText: "#9E9E9E",

	ClusterBorder: "#BDBDBD",
	ClusterLabel:  "#757575",
}
