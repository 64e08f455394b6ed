package stream

type multiStream struct {
	streams []Stream
}

// Multi returns a Stream that duplicates every write to all of streams.
// A write stops at the first failing sink.
func Multi(streams ...Stream) Stream {
	all := make([]Stream, 0, len(streams))
	for _, s := range streams {
		if m, ok := s.(*multiStream); ok {
			all = append(all, m.streams...)
			continue
		}
		all = append(all, s)
	}
	return &multiStream{streams: all}
}

func (m *multiStream) WriteString(s string) (int, error) {
	for _, st := range m.streams {
		n, err := st.WriteString(s)
		if err != nil {
			return n, err
		}
	}
	return len(s), nil
}

func (m *multiStream) Flush() error {
	var first error
	for _, st := range m.streams {
		if err := st.Flush(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
