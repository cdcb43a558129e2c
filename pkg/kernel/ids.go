package kernel

type AnalysisID string

func NewAnalysisID(id string) AnalysisID { return AnalysisID(id) }
func (a AnalysisID) String() string      { return string(a) }
func (a AnalysisID) IsEmpty() bool       { return string(a) == "" }

type JobID string

func NewJobID(id string) JobID { return JobID(id) }
func (j JobID) String() string { return string(j) }
func (j JobID) IsEmpty() bool  { return string(j) == "" }

type DocumentID string

func NewDocumentID(id string) DocumentID { return DocumentID(id) }
func (d DocumentID) String() string      { return string(d) }
func (d DocumentID) IsEmpty() bool       { return string(d) == "" }

// RequestToken is an opaque client-supplied token echoed back on analysis
// responses so a UI can discard responses for requests it no longer cares about.
type RequestToken string

func NewRequestToken(token string) RequestToken { return RequestToken(token) }
func (t RequestToken) String() string           { return string(t) }
func (t RequestToken) IsEmpty() bool            { return string(t) == "" }
