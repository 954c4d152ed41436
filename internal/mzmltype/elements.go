package mzmltype

import "encoding/xml"

// CvParam is a controlled vocabulary term attached to an element.
type CvParam struct {
	CVRef         string `xml:"cvRef,attr"`
	Accession     string `xml:"accession,attr"`
	Name          string `xml:"name,attr"`
	Value         string `xml:"value,attr"`
	UnitCVRef     string `xml:"unitCvRef,attr,omitempty"`
	UnitAccession string `xml:"unitAccession,attr,omitempty"`
	UnitName      string `xml:"unitName,attr,omitempty"`
}

// UserParam is an uncontrolled name/value annotation.
type UserParam struct {
	Name          string `xml:"name,attr"`
	Type          string `xml:"type,attr,omitempty"`
	Value         string `xml:"value,attr,omitempty"`
	UnitCVRef     string `xml:"unitCvRef,attr,omitempty"`
	UnitAccession string `xml:"unitAccession,attr,omitempty"`
	UnitName      string `xml:"unitName,attr,omitempty"`
}

// Ref is an element whose only content is a ref attribute.
type Ref struct {
	Ref string `xml:"ref,attr"`
}

// ParamGroup holds the parameters shared by most mzML elements.
// It is embedded so its children precede the element's own children.
type ParamGroup struct {
	GroupRefs  []Ref       `xml:"referenceableParamGroupRef"`
	CvParams   []CvParam   `xml:"cvParam"`
	UserParams []UserParam `xml:"userParam"`
}

// Param returns the first cvParam with the given accession.
func (g *ParamGroup) Param(accession string) (CvParam, bool) {
	for _, p := range g.CvParams {
		if p.Accession == accession {
			return p, true
		}
	}
	return CvParam{}, false
}

// Has reports whether a cvParam with the given accession is present.
func (g *ParamGroup) Has(accession string) bool {
	_, ok := g.Param(accession)
	return ok
}

// CVList declares the controlled vocabularies referenced by the document.
type CVList struct {
	Count int  `xml:"count,attr"`
	CVs   []CV `xml:"cv"`
}

// CV is a single controlled vocabulary declaration.
type CV struct {
	ID       string `xml:"id,attr"`
	FullName string `xml:"fullName,attr"`
	Version  string `xml:"version,attr,omitempty"`
	URI      string `xml:"URI,attr"`
}

// FileDescription describes the run's content and source files.
type FileDescription struct {
	FileContent    ParamGroup      `xml:"fileContent"`
	SourceFileList *SourceFileList `xml:"sourceFileList"`
	Contacts       []ParamGroup    `xml:"contact"`
}

// SourceFileList lists the files the document was converted from.
type SourceFileList struct {
	Count       int          `xml:"count,attr"`
	SourceFiles []SourceFile `xml:"sourceFile"`
}

// SourceFile is a file the document was converted from.
type SourceFile struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"name,attr"`
	Location string `xml:"location,attr"`
	ParamGroup
}

// ReferenceableParamGroupList holds parameter groups referenced by id.
type ReferenceableParamGroupList struct {
	Count  int                       `xml:"count,attr"`
	Groups []ReferenceableParamGroup `xml:"referenceableParamGroup"`
}

// ReferenceableParamGroup is a named set of parameters.
type ReferenceableParamGroup struct {
	ID string `xml:"id,attr"`
	ParamGroup
}

// SampleList describes the samples in the run.
type SampleList struct {
	Count   int      `xml:"count,attr"`
	Samples []Sample `xml:"sample"`
}

// Sample describes one sample.
type Sample struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr,omitempty"`
	ParamGroup
}

// SoftwareList lists software used to acquire or process the data.
type SoftwareList struct {
	Count    int        `xml:"count,attr"`
	Software []Software `xml:"software"`
}

// Software is one piece of software.
type Software struct {
	ID      string `xml:"id,attr"`
	Version string `xml:"version,attr"`
	ParamGroup
}

// ScanSettingsList lists acquisition settings.
type ScanSettingsList struct {
	Count        int            `xml:"count,attr"`
	ScanSettings []ScanSettings `xml:"scanSettings"`
}

// ScanSettings describes instrument acquisition settings.
type ScanSettings struct {
	ID string `xml:"id,attr"`
	ParamGroup
	SourceFileRefList *SourceFileRefList `xml:"sourceFileRefList"`
	TargetList        *TargetList        `xml:"targetList"`
}

// SourceFileRefList references source files.
type SourceFileRefList struct {
	Count int   `xml:"count,attr"`
	Refs  []Ref `xml:"sourceFileRef"`
}

// TargetList lists inclusion targets.
type TargetList struct {
	Count   int          `xml:"count,attr"`
	Targets []ParamGroup `xml:"target"`
}

// InstrumentConfigurationList lists instrument hardware configurations.
type InstrumentConfigurationList struct {
	Count   int                       `xml:"count,attr"`
	Configs []InstrumentConfiguration `xml:"instrumentConfiguration"`
}

// InstrumentConfiguration describes one hardware configuration.
type InstrumentConfiguration struct {
	ID              string `xml:"id,attr"`
	ScanSettingsRef string `xml:"scanSettingsRef,attr,omitempty"`
	ParamGroup
	ComponentList *ComponentList `xml:"componentList"`
	SoftwareRef   *Ref           `xml:"softwareRef"`
}

// ComponentList holds the source, analyzer and detector components.
type ComponentList struct {
	Count     int         `xml:"count,attr"`
	Sources   []Component `xml:"source"`
	Analyzers []Component `xml:"analyzer"`
	Detectors []Component `xml:"detector"`
}

// Component is one instrument component.
type Component struct {
	Order int `xml:"order,attr"`
	ParamGroup
}

// DataProcessingList lists processing pipelines applied to the data.
type DataProcessingList struct {
	Count          int              `xml:"count,attr"`
	DataProcessing []DataProcessing `xml:"dataProcessing"`
}

// DataProcessing is an ordered set of processing methods.
type DataProcessing struct {
	ID      string             `xml:"id,attr"`
	Methods []ProcessingMethod `xml:"processingMethod"`
}

// ProcessingMethod is one processing step.
type ProcessingMethod struct {
	Order       int    `xml:"order,attr"`
	SoftwareRef string `xml:"softwareRef,attr"`
	ParamGroup
}

// Run holds the acquisition run and its bulk record lists.
type Run struct {
	ID                                string `xml:"id,attr"`
	DefaultInstrumentConfigurationRef string `xml:"defaultInstrumentConfigurationRef,attr"`
	DefaultSourceFileRef              string `xml:"defaultSourceFileRef,attr,omitempty"`
	SampleRef                         string `xml:"sampleRef,attr,omitempty"`
	StartTimeStamp                    string `xml:"startTimeStamp,attr,omitempty"`
	ParamGroup
	SpectrumList     *SpectrumList     `xml:"spectrumList"`
	ChromatogramList *ChromatogramList `xml:"chromatogramList"`
}

// SpectrumList holds spectra. In a document shell Spectra is empty.
type SpectrumList struct {
	Count                    int        `xml:"count,attr"`
	DefaultDataProcessingRef string     `xml:"defaultDataProcessingRef,attr"`
	Spectra                  []Spectrum `xml:"spectrum"`
}

// ChromatogramList holds chromatograms. In a document shell Chromatograms is empty.
type ChromatogramList struct {
	Count                    int            `xml:"count,attr"`
	DefaultDataProcessingRef string         `xml:"defaultDataProcessingRef,attr"`
	Chromatograms            []Chromatogram `xml:"chromatogram"`
}

// Spectrum is a single mass spectrum.
type Spectrum struct {
	Index              int    `xml:"index,attr"`
	ID                 string `xml:"id,attr"`
	SpotID             string `xml:"spotID,attr,omitempty"`
	DefaultArrayLength int    `xml:"defaultArrayLength,attr"`
	DataProcessingRef  string `xml:"dataProcessingRef,attr,omitempty"`
	SourceFileRef      string `xml:"sourceFileRef,attr,omitempty"`
	ParamGroup
	ScanList            *ScanList            `xml:"scanList"`
	PrecursorList       *PrecursorList       `xml:"precursorList"`
	ProductList         *ProductList         `xml:"productList"`
	BinaryDataArrayList *BinaryDataArrayList `xml:"binaryDataArrayList"`
}

// Chromatogram is a single chromatogram.
type Chromatogram struct {
	Index              int    `xml:"index,attr"`
	ID                 string `xml:"id,attr"`
	DefaultArrayLength int    `xml:"defaultArrayLength,attr"`
	DataProcessingRef  string `xml:"dataProcessingRef,attr,omitempty"`
	ParamGroup
	Precursor           *Precursor           `xml:"precursor"`
	Product             *Product             `xml:"product"`
	BinaryDataArrayList *BinaryDataArrayList `xml:"binaryDataArrayList"`
}

// ScanList holds the scans that produced a spectrum.
type ScanList struct {
	Count int `xml:"count,attr"`
	ParamGroup
	Scans []Scan `xml:"scan"`
}

// Scan is one instrument scan.
type Scan struct {
	SpectrumRef                string `xml:"spectrumRef,attr,omitempty"`
	SourceFileRef              string `xml:"sourceFileRef,attr,omitempty"`
	ExternalSpectrumID         string `xml:"externalSpectrumID,attr,omitempty"`
	InstrumentConfigurationRef string `xml:"instrumentConfigurationRef,attr,omitempty"`
	ParamGroup
	ScanWindowList *ScanWindowList `xml:"scanWindowList"`
}

// ScanWindowList holds scan windows.
type ScanWindowList struct {
	Count   int          `xml:"count,attr"`
	Windows []ParamGroup `xml:"scanWindow"`
}

// PrecursorList holds the precursors of a fragment spectrum.
type PrecursorList struct {
	Count      int         `xml:"count,attr"`
	Precursors []Precursor `xml:"precursor"`
}

// Precursor describes the parent ion selection for a fragment spectrum.
type Precursor struct {
	SpectrumRef        string           `xml:"spectrumRef,attr,omitempty"`
	SourceFileRef      string           `xml:"sourceFileRef,attr,omitempty"`
	ExternalSpectrumID string           `xml:"externalSpectrumID,attr,omitempty"`
	IsolationWindow    *ParamGroup      `xml:"isolationWindow"`
	SelectedIonList    *SelectedIonList `xml:"selectedIonList"`
	Activation         ParamGroup       `xml:"activation"`
}

// SelectedIonList holds the ions selected for fragmentation.
type SelectedIonList struct {
	Count int          `xml:"count,attr"`
	Ions  []ParamGroup `xml:"selectedIon"`
}

// ProductList holds product ion isolation windows.
type ProductList struct {
	Count    int       `xml:"count,attr"`
	Products []Product `xml:"product"`
}

// Product describes a product ion isolation window.
type Product struct {
	IsolationWindow *ParamGroup `xml:"isolationWindow"`
}

// BinaryDataArrayList holds the encoded numeric arrays of a record.
type BinaryDataArrayList struct {
	Count  int               `xml:"count,attr"`
	Arrays []BinaryDataArray `xml:"binaryDataArray"`
}

// BinaryDataArray is one encoded numeric array.
type BinaryDataArray struct {
	ArrayLength       int    `xml:"arrayLength,attr,omitempty"`
	EncodedLength     int    `xml:"encodedLength,attr"`
	DataProcessingRef string `xml:"dataProcessingRef,attr,omitempty"`
	ParamGroup
	Binary string `xml:"binary"`
}

// MzML is the mzML root element.
type MzML struct {
	Attrs   []xml.Attr `xml:",any,attr"`
	ID      string     `xml:"id,attr,omitempty"`
	Version string     `xml:"version,attr"`

	CVList                      CVList                       `xml:"cvList"`
	FileDescription             FileDescription              `xml:"fileDescription"`
	ReferenceableParamGroupList *ReferenceableParamGroupList `xml:"referenceableParamGroupList"`
	SampleList                  *SampleList                  `xml:"sampleList"`
	SoftwareList                SoftwareList                 `xml:"softwareList"`
	ScanSettingsList            *ScanSettingsList            `xml:"scanSettingsList"`
	InstrumentConfigurationList InstrumentConfigurationList  `xml:"instrumentConfigurationList"`
	DataProcessingList          DataProcessingList           `xml:"dataProcessingList"`
	Run                         Run                          `xml:"run"`
}

// IndexList is the byte offset table of an indexedmzML document.
type IndexList struct {
	Count   int           `xml:"count,attr"`
	Indexes []OffsetIndex `xml:"index"`
}

// OffsetIndex lists offsets for one record kind ("spectrum" or "chromatogram").
type OffsetIndex struct {
	Name    string   `xml:"name,attr"`
	Offsets []Offset `xml:"offset"`
}

// Offset is the byte offset of one record.
type Offset struct {
	IDRef    string `xml:"idRef,attr"`
	SpotID   string `xml:"spotID,attr,omitempty"`
	ScanTime string `xml:"scanTime,attr,omitempty"`
	Value    uint64 `xml:",chardata"`
}
