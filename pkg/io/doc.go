// Package io reads box lists and writes placement reports.
//
// # Box Lists
//
// A box list is the ordered sequence of sizes fed to the placement engine.
// Five input formats are recognised, by file extension or explicit format:
//
//	json   {"boxes": [{"label": "a", "width": 100, "height": 80}, [50, 50]]}
//	       or a bare array of the same elements
//	csv    header row with width/w, height/h and optional label/name and
//	       quantity/qty columns; without a header the columns are
//	       width,height[,label]
//	toml   [[box]] tables with width, height, optional label and quantity
//	xlsx   first worksheet, same column rules as CSV
//	dxf    one box per closed LWPOLYLINE, sized by its bounding box
//
// Every item is validated with [errors.ValidateBoxSize] and
// [errors.ValidateLabel]; the first invalid row aborts the read with an
// INVALID_BOX or INVALID_INPUT error naming the row.
//
// # Reports
//
// [WriteXLSX] writes a placement report workbook (one row per block plus a
// summary sheet). [WriteDXF] writes block outlines for CAD tools, with the Y
// axis flipped so the drawing matches the screen orientation.
//
// [errors.ValidateBoxSize]: github.com/matzehuels/pinwheel/pkg/errors.ValidateBoxSize
// [errors.ValidateLabel]: github.com/matzehuels/pinwheel/pkg/errors.ValidateLabel
package io
