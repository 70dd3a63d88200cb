// Package mermaid renders Mermaid diagram syntax to PNG images by shelling out to the mmdc CLI.
// The renderer owns the temporary input file, the subprocess invocation with a repaired PATH,
// the width/scale/theme policy and the validation of the produced artifact.
package mermaid
