package reveal

// recordingSink 记录每次写入的测试 Sink
type recordingSink struct {
	texts  []string
	alphas []float64
}

func (s *recordingSink) SetText(text string) {
	s.texts = append(s.texts, text)
}

func (s *recordingSink) SetAlpha(alpha float64) {
	s.alphas = append(s.alphas, alpha)
}

func (s *recordingSink) text() string {
	if len(s.texts) == 0 {
		return ""
	}
	return s.texts[len(s.texts)-1]
}

func (s *recordingSink) alpha() float64 {
	if len(s.alphas) == 0 {
		return -1
	}
	return s.alphas[len(s.alphas)-1]
}

// textOnlySink 不支持透明度的 Sink
type textOnlySink struct {
	text string
}

func (s *textOnlySink) SetText(text string) {
	s.text = text
}

func constRate(r float64) RateFunc {
	return func() float64 { return r }
}
