package models

// Candle — закрытая свеча OHLCV. Timestamp — открытие свечи, epoch ms.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Window — хронологическая серия свечей одного (pair, timeframe),
// последний элемент — самая свежая свеча.
type Window []Candle

func (w Window) Last() Candle {
	if len(w) == 0 {
		return Candle{}
	}
	return w[len(w)-1]
}

func (w Window) Closes() []float64 {
	out := make([]float64, len(w))
	for i, c := range w {
		out[i] = c.Close
	}
	return out
}

func (w Window) Volumes() []float64 {
	out := make([]float64, len(w))
	for i, c := range w {
		out[i] = c.Volume
	}
	return out
}

// Copy — каждая стратегия работает со своей копией окна.
func (w Window) Copy() Window {
	out := make(Window, len(w))
	copy(out, w)
	return out
}
