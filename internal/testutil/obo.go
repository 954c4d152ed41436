package testutil

// PSIMSOBO is a subset of the PSI-MS vocabulary covering every term the
// fixture documents and the validation rule table use.
const PSIMSOBO = `format-version: 1.2
data-version: 4.1.184-fixture
ontology: ms

[Term]
id: MS:0000000
name: Proteomics Standards Initiative Mass Spectrometry Vocabularies

[Term]
id: MS:1000524
name: data file content
is_a: MS:0000000 ! parent

[Term]
id: MS:1000559
name: spectrum type
is_a: MS:0000000 ! parent

[Term]
id: MS:1000294
name: mass spectrum
is_a: MS:1000559 ! parent
is_a: MS:1000524 ! parent

[Term]
id: MS:1000579
name: MS1 spectrum
is_a: MS:1000294 ! parent

[Term]
id: MS:1000580
name: MSn spectrum
is_a: MS:1000294 ! parent

[Term]
id: MS:1000525
name: spectrum representation
is_a: MS:0000000 ! parent

[Term]
id: MS:1000127
name: centroid spectrum
is_a: MS:1000525 ! parent

[Term]
id: MS:1000128
name: profile spectrum
is_a: MS:1000525 ! parent

[Term]
id: MS:1000465
name: scan polarity
is_a: MS:0000000 ! parent

[Term]
id: MS:1000130
name: positive scan
is_a: MS:1000465 ! parent

[Term]
id: MS:1000129
name: negative scan
is_a: MS:1000465 ! parent

[Term]
id: MS:1000499
name: spectrum attribute
is_a: MS:0000000 ! parent

[Term]
id: MS:1000511
name: ms level
is_a: MS:1000499 ! parent

[Term]
id: MS:1000285
name: total ion current
is_a: MS:1000499 ! parent

[Term]
id: MS:1000570
name: spectra combination
is_a: MS:0000000 ! parent

[Term]
id: MS:1000795
name: no combination
is_a: MS:1000570 ! parent

[Term]
id: MS:1000503
name: scan attribute
is_a: MS:0000000 ! parent

[Term]
id: MS:1000016
name: scan start time
is_a: MS:1000503 ! parent

[Term]
id: MS:1000018
name: scan direction
is_a: MS:0000000 ! parent

[Term]
id: MS:1000019
name: scan law
is_a: MS:0000000 ! parent

[Term]
id: MS:1000549
name: selection window attribute
is_a: MS:0000000 ! parent

[Term]
id: MS:1000500
name: scan window upper limit
is_a: MS:1000549 ! parent

[Term]
id: MS:1000501
name: scan window lower limit
is_a: MS:1000549 ! parent

[Term]
id: MS:1000792
name: isolation window attribute
is_a: MS:0000000 ! parent

[Term]
id: MS:1000827
name: isolation window target m/z
is_a: MS:1000792 ! parent

[Term]
id: MS:1000828
name: isolation window lower offset
is_a: MS:1000792 ! parent

[Term]
id: MS:1000829
name: isolation window upper offset
is_a: MS:1000792 ! parent

[Term]
id: MS:1000455
name: ion selection attribute
is_a: MS:0000000 ! parent

[Term]
id: MS:1000744
name: selected ion m/z
is_a: MS:1000455 ! parent

[Term]
id: MS:1000041
name: charge state
is_a: MS:1000455 ! parent

[Term]
id: MS:1000044
name: dissociation method
is_a: MS:0000000 ! parent

[Term]
id: MS:1000133
name: collision-induced dissociation
is_a: MS:1000044 ! parent

[Term]
id: MS:1000510
name: precursor activation attribute
is_a: MS:0000000 ! parent

[Term]
id: MS:1000045
name: collision energy
is_a: MS:1000510 ! parent

[Term]
id: MS:1000518
name: binary data type
is_a: MS:0000000 ! parent

[Term]
id: MS:1000521
name: 32-bit float
is_a: MS:1000518 ! parent

[Term]
id: MS:1000523
name: 64-bit float
is_a: MS:1000518 ! parent

[Term]
id: MS:1000572
name: binary data compression type
is_a: MS:0000000 ! parent

[Term]
id: MS:1000574
name: zlib compression
is_a: MS:1000572 ! parent

[Term]
id: MS:1000576
name: no compression
is_a: MS:1000572 ! parent

[Term]
id: MS:1000513
name: binary data array
is_a: MS:0000000 ! parent

[Term]
id: MS:1000514
name: m/z array
is_a: MS:1000513 ! parent

[Term]
id: MS:1000515
name: intensity array
is_a: MS:1000513 ! parent

[Term]
id: MS:1000595
name: time array
is_a: MS:1000513 ! parent

[Term]
id: MS:1000626
name: chromatogram type
is_a: MS:0000000 ! parent

[Term]
id: MS:1000235
name: total ion current chromatogram
is_a: MS:1000626 ! parent

[Term]
id: MS:1000808
name: chromatogram attribute
is_a: MS:0000000 ! parent

[Term]
id: MS:1000031
name: instrument model
is_a: MS:0000000 ! parent

[Term]
id: MS:1000483
name: Thermo Fisher Scientific instrument model
is_a: MS:1000031 ! parent

[Term]
id: MS:1001742
name: LTQ Orbitrap Velos
is_a: MS:1000483 ! parent

[Term]
id: MS:1000496
name: instrument attribute
is_a: MS:0000000 ! parent

[Term]
id: MS:1000529
name: instrument serial number
is_a: MS:1000496 ! parent

[Term]
id: MS:1000008
name: ionization type
is_a: MS:0000000 ! parent

[Term]
id: MS:1000073
name: electrospray ionization
is_a: MS:1000008 ! parent

[Term]
id: MS:1000007
name: inlet type
is_a: MS:0000000 ! parent

[Term]
id: MS:1000057
name: electrospray inlet
is_a: MS:1000007 ! parent

[Term]
id: MS:1000482
name: source attribute
is_a: MS:0000000 ! parent

[Term]
id: MS:1000443
name: mass analyzer type
is_a: MS:0000000 ! parent

[Term]
id: MS:1000484
name: orbitrap
is_a: MS:1000443 ! parent

[Term]
id: MS:1000480
name: mass analyzer attribute
is_a: MS:0000000 ! parent

[Term]
id: MS:1000026
name: detector type
is_a: MS:0000000 ! parent

[Term]
id: MS:1000624
name: inductive detector
is_a: MS:1000026 ! parent

[Term]
id: MS:1000481
name: detector attribute
is_a: MS:0000000 ! parent

[Term]
id: MS:1000027
name: detector acquisition mode
is_a: MS:0000000 ! parent

[Term]
id: MS:1000531
name: software
is_a: MS:0000000 ! parent

[Term]
id: MS:1000615
name: ProteoWizard software
is_a: MS:1000531 ! parent

[Term]
id: MS:1000452
name: data transformation
is_a: MS:0000000 ! parent

[Term]
id: MS:1000544
name: Conversion to mzML
is_a: MS:1000452 ! parent

[Term]
id: MS:1000630
name: data processing parameter
is_a: MS:0000000 ! parent

[Term]
id: MS:1000560
name: mass spectrometer file format
is_a: MS:0000000 ! parent

[Term]
id: MS:1000563
name: Thermo RAW format
is_a: MS:1000560 ! parent

[Term]
id: MS:1000767
name: native spectrum identifier format
is_a: MS:0000000 ! parent

[Term]
id: MS:1000768
name: Thermo nativeID format
is_a: MS:1000767 ! parent

[Term]
id: MS:1000561
name: data file checksum type
is_a: MS:0000000 ! parent

[Term]
id: MS:1000569
name: SHA-1
is_a: MS:1000561 ! parent

[Term]
id: MS:1000040
name: m/z
is_a: UO:0000000 ! parent

[Term]
id: MS:1000131
name: number of detector counts
is_a: UO:0000000 ! parent

[Term]
id: MS:1000043
name: intensity unit
is_a: MS:0000000 ! parent

[Term]
id: MS:1000585
name: contact attribute
is_a: MS:0000000 ! parent

[Term]
id: MS:1000586
name: contact name
is_a: MS:1000585 ! parent

[Term]
id: MS:1000001
name: sample number
is_obsolete: true

[Typedef]
id: part_of
name: part of
is_transitive: true
`

// UOOBO is a subset of the Unit Ontology.
const UOOBO = `format-version: 1.2
data-version: releases/2020-03-10-fixture
ontology: uo

[Term]
id: UO:0000000
name: unit

[Term]
id: UO:0000003
name: time unit
is_a: UO:0000000 ! parent

[Term]
id: UO:0000010
name: second
is_a: UO:0000003 ! parent

[Term]
id: UO:0000031
name: minute
is_a: UO:0000003 ! parent

[Term]
id: UO:0000111
name: energy unit
is_a: UO:0000000 ! parent

[Term]
id: UO:0000266
name: electronvolt
is_a: UO:0000111 ! parent
`
