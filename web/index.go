package web

import (
	_ "embed"
)

// IndexTmpl html template for the start page
//
//go:embed index.html
var IndexTmpl string
