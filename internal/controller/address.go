package controller

// Address maps a linear instance index to its hardware channel.
// The lane selects the calibration and gain slot and does not depend on the bank.
type Address struct {
	Index int `json:"index"`
	Bank  int `json:"bank"`
	Lane  int `json:"lane"`
}

func NewAddress(index int, lanesPerBank int) Address {
	if lanesPerBank <= 0 {
		lanesPerBank = 1
	}
	return Address{
		Index: index,
		Bank:  index / lanesPerBank,
		Lane:  index % lanesPerBank,
	}
}
