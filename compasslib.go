// Package compasslib is the external interface of the cave-survey
// geometry-and-graph engine: project and survey parsing, network assembly,
// BFS propagation, and traverse adjustment.
package compasslib

import (
	"github.com/OpenSpeleo/compasslib/pkg/diag"
	"github.com/OpenSpeleo/compasslib/pkg/geom"
	"github.com/OpenSpeleo/compasslib/pkg/geonet"
	"github.com/OpenSpeleo/compasslib/pkg/project"
	"github.com/OpenSpeleo/compasslib/pkg/survey"
	"github.com/OpenSpeleo/compasslib/pkg/traverse"
)

// Diagnostic is one non-fatal condition accumulated during parsing,
// assembly, propagation, or adjustment.
type Diagnostic = diag.Diagnostic

// AssembleOptions carries the external collaborators Assemble may consult,
// such as a geomagnetic declination model.
type AssembleOptions = geonet.Options

// ParseProject parses a project descriptor. A malformed record or unmatched
// folder bracket is a fatal *project.ParseError.
func ParseProject(data []byte) (*project.Project, error) {
	return project.ParseProject(data)
}

// ParseSurvey parses a survey file's surveys. A malformed header is
// non-fatal to the file: that survey is skipped and recorded as a
// survey.header Diagnostic.
func ParseSurvey(file string, data []byte) ([]*survey.Survey, []Diagnostic, error) {
	surveys, diags, err := survey.ParseSurvey(file, data)
	return surveys, []Diagnostic(diags), err
}

// Assemble merges a project's files and their parsed surveys into a single
// SurveyNetwork.
func Assemble(proj *project.Project, surveysByFile map[string][]*survey.Survey) (*geonet.SurveyNetwork, []Diagnostic) {
	net, diags := geonet.Assemble(proj, surveysByFile)
	return net, []Diagnostic(diags)
}

// AssembleWithOptions is Assemble with explicit collaborator options.
func AssembleWithOptions(proj *project.Project, surveysByFile map[string][]*survey.Survey, opts AssembleOptions) (*geonet.SurveyNetwork, []Diagnostic) {
	net, diags := geonet.AssembleWithOptions(proj, surveysByFile, opts)
	return net, []Diagnostic(diags)
}

// Propagate runs the multi-source BFS walk that assigns every station an
// initial position and anchor origin.
func Propagate(net *geonet.SurveyNetwork) []Diagnostic {
	return []Diagnostic(geonet.Propagate(net))
}

// Adjust runs the traverse-adjustment solver, returning every reachable
// non-anchor station's corrected position. Callers that want the full
// network should merge this with the network's unchanged anchor positions.
func Adjust(net *geonet.SurveyNetwork) (map[string]geom.Vector3D, []Diagnostic) {
	positions, diags := traverse.Adjust(net)
	return positions, []Diagnostic(diags)
}
