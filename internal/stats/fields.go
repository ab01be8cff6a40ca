// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stats

// FieldPath is a dotted path into a canonical record. Paths double as
// traversal instructions and as tally keys, so they are declared once here
// as typed constants instead of free-form strings scattered through views;
// a typo'd path cannot silently become a field that is "never missing".
type FieldPath string

// Canonical required-field paths.
const (
	FieldID                  FieldPath = "id"
	FieldAuthors             FieldPath = "authors"
	FieldYear                FieldPath = "year"
	FieldTitleText           FieldPath = "title.text"
	FieldVenue               FieldPath = "venue"
	FieldMainMethodType      FieldPath = "mainMethod.type"
	FieldMainMethodTechnique FieldPath = "mainMethod.technique"
	FieldDomain              FieldPath = "domain.domain"
	FieldCoreTaskCTA         FieldPath = "coreTasks.cta"
	FieldCoreTaskCPA         FieldPath = "coreTasks.cpa"
	FieldCoreTaskCEA         FieldPath = "coreTasks.cea"
	FieldCoreTaskCNEA        FieldPath = "coreTasks.cnea"
	FieldUserRevisionType    FieldPath = "userRevision.type"
	FieldLicense             FieldPath = "license"
	FieldInputTypeOfTable    FieldPath = "inputs.typeOfTable"
	FieldKGTripleStore       FieldPath = "inputs.kg.tripleStore"
	FieldOutputFormat        FieldPath = "outputFormat"
	FieldCheckedByAuthor     FieldPath = "checkedByAuthor"
	FieldDOI                 FieldPath = "doi"
)

// Paths the engine reads but does not require.
const (
	pathKGIndex FieldPath = "inputs.kg.index"
	pathCode    FieldPath = "codeAvailability"
)

// RequiredFields is the closed set of paths a complete record must fill.
// Declaration order is load-bearing twice over: it is the iteration order of
// Snapshot.MissingFields and the tie-break order for MostMissingField.
var RequiredFields = []FieldPath{
	FieldID,
	FieldAuthors,
	FieldYear,
	FieldTitleText,
	FieldVenue,
	FieldMainMethodType,
	FieldMainMethodTechnique,
	FieldDomain,
	FieldCoreTaskCTA,
	FieldCoreTaskCPA,
	FieldCoreTaskCEA,
	FieldCoreTaskCNEA,
	FieldUserRevisionType,
	FieldLicense,
	FieldInputTypeOfTable,
	FieldKGTripleStore,
	FieldOutputFormat,
	FieldCheckedByAuthor,
	FieldDOI,
}

var requiredSet = func() map[FieldPath]bool {
	m := make(map[FieldPath]bool, len(RequiredFields))
	for _, p := range RequiredFields {
		m[p] = true
	}
	return m
}()

// step is one support-task pipeline stage. The two structured steps define
// coverage through a non-blank description field; the rest are judged on the
// raw value.
type step struct {
	name        string
	description bool
}

// steps lists the eight pipeline steps in canonical display order.
var steps = []step{
	{name: "dataPreparation", description: true},
	{name: "subjectDetection"},
	{name: "columnClassification"},
	{name: "typeAnnotation"},
	{name: "predicateAnnotation"},
	{name: "datatypeAnnotation"},
	{name: "entityLinking", description: true},
	{name: "nilAnnotation"},
}
