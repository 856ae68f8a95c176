package utils

import (
	"image/color"
	"time"
)

type ColorName uint8

const (
	MeshColor ColorName = iota
	BoundaryColor
	HorizonColor
	FaultColor
)

var colors = map[ColorName]color.RGBA{
	MeshColor:     {R: 255, G: 255, B: 255},
	BoundaryColor: {R: 25, G: 255, B: 25},
	HorizonColor:  {R: 50, G: 0, B: 255},
	FaultColor:    {R: 255, G: 0, B: 50},
}

func GetColor(name ColorName) (c color.RGBA) {
	return colors[name]
}

func SleepFor(milliseconds int) {
	time.Sleep(time.Duration(milliseconds) * time.Millisecond)
}
