package resolutionlog

type NoneWriter struct{}

func NewNoneWriter() *NoneWriter {
	return &NoneWriter{}
}

func (d *NoneWriter) Write(*Entry) {
	// Nothing to do
}

func (d *NoneWriter) CleanUp() {
	// Nothing to do
}
