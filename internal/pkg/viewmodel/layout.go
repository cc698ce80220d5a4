package viewmodel

type Layout struct {
	Page    string
	IsError bool
	Msg     string
	IsDev   bool
}
