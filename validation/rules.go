package validation

// Kind names an element kind that carries vocabulary rules. Values are the
// XML element names.
type Kind string

// Element kinds with rule sets.
const (
	KindFileContent             Kind = "fileContent"
	KindSourceFile              Kind = "sourceFile"
	KindContact                 Kind = "contact"
	KindSoftware                Kind = "software"
	KindInstrumentConfiguration Kind = "instrumentConfiguration"
	KindSource                  Kind = "source"
	KindAnalyzer                Kind = "analyzer"
	KindDetector                Kind = "detector"
	KindProcessingMethod        Kind = "processingMethod"
	KindSpectrum                Kind = "spectrum"
	KindChromatogram            Kind = "chromatogram"
	KindScanList                Kind = "scanList"
	KindScan                    Kind = "scan"
	KindScanWindow              Kind = "scanWindow"
	KindIsolationWindow         Kind = "isolationWindow"
	KindSelectedIon             Kind = "selectedIon"
	KindActivation              Kind = "activation"
	KindBinaryDataArray         Kind = "binaryDataArray"
)

// RuleSet lists parent accessions in four groups. A term is accepted on an
// element when it descends from a parent in any group.
type RuleSet struct {
	// ExactlyOne parents must each have exactly one descendant present.
	ExactlyOne []string
	// AtLeastOne parents must each have one or more descendants present.
	AtLeastOne []string
	// AtMostOne parents may each have zero or one descendant present.
	AtMostOne []string
	// AnyNumber parents only widen the accepted set.
	AnyNumber []string
}

// Rules maps element kinds to their rule sets.
type Rules map[Kind]RuleSet

// DefaultRules returns the rule table for mzML 1.1.
func DefaultRules() Rules {
	return Rules{
		KindFileContent: {
			AtLeastOne: []string{"MS:1000524"}, // data file content
			AnyNumber:  []string{"MS:1000525"}, // spectrum representation
		},
		KindSourceFile: {
			ExactlyOne: []string{
				"MS:1000560", // mass spectrometer file format
				"MS:1000767", // native spectrum identifier format
			},
			AtMostOne: []string{"MS:1000561"}, // data file checksum type
		},
		KindContact: {
			AtLeastOne: []string{"MS:1000585"}, // contact attribute
		},
		KindSoftware: {
			AtLeastOne: []string{"MS:1000531"}, // software
		},
		KindInstrumentConfiguration: {
			ExactlyOne: []string{"MS:1000031"}, // instrument model
			AnyNumber:  []string{"MS:1000496"}, // instrument attribute
		},
		KindSource: {
			AtLeastOne: []string{"MS:1000008"}, // ionization type
			AnyNumber: []string{
				"MS:1000007", // inlet type
				"MS:1000482", // source attribute
			},
		},
		KindAnalyzer: {
			ExactlyOne: []string{"MS:1000443"}, // mass analyzer type
			AnyNumber:  []string{"MS:1000480"}, // mass analyzer attribute
		},
		KindDetector: {
			ExactlyOne: []string{"MS:1000026"}, // detector type
			AnyNumber: []string{
				"MS:1000481", // detector attribute
				"MS:1000027", // detector acquisition mode
			},
		},
		KindProcessingMethod: {
			AtLeastOne: []string{"MS:1000452"}, // data transformation
			AnyNumber:  []string{"MS:1000630"}, // data processing parameter
		},
		KindSpectrum: {
			ExactlyOne: []string{"MS:1000559"}, // spectrum type
			AtMostOne: []string{
				"MS:1000525", // spectrum representation
				"MS:1000465", // scan polarity
			},
			AnyNumber: []string{"MS:1000499"}, // spectrum attribute
		},
		KindChromatogram: {
			ExactlyOne: []string{"MS:1000626"}, // chromatogram type
			AnyNumber:  []string{"MS:1000808"}, // chromatogram attribute
		},
		KindScanList: {
			ExactlyOne: []string{"MS:1000570"}, // spectra combination
		},
		KindScan: {
			AnyNumber: []string{
				"MS:1000503", // scan attribute
				"MS:1000018", // scan direction
				"MS:1000019", // scan law
			},
		},
		KindScanWindow: {
			AtLeastOne: []string{"MS:1000549"}, // selection window attribute
		},
		KindIsolationWindow: {
			AtLeastOne: []string{"MS:1000792"}, // isolation window attribute
		},
		KindSelectedIon: {
			AtLeastOne: []string{"MS:1000455"}, // ion selection attribute
		},
		KindActivation: {
			AtLeastOne: []string{"MS:1000044"}, // dissociation method
			AnyNumber:  []string{"MS:1000510"}, // precursor activation attribute
		},
		KindBinaryDataArray: {
			ExactlyOne: []string{
				"MS:1000518", // binary data type
				"MS:1000572", // binary data compression type
				"MS:1000513", // binary data array
			},
		},
	}
}
