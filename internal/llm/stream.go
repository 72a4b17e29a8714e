package llm

import "github.com/cloudwego/eino/schema"

// modelTokenStream adapts the model stream to the TokenStream contract,
// skipping empty chunks so callers only ever see text fragments.
type modelTokenStream struct {
	inner *schema.StreamReader[*schema.Message]
}

func (s *modelTokenStream) Recv() (string, error) {
	for {
		chunk, err := s.inner.Recv()
		if err != nil {
			return "", err
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}
		return chunk.Content, nil
	}
}

func (s *modelTokenStream) Close() {
	s.inner.Close()
}
