package main

import (
	"fmt"
	"os"
	"strconv"

	"tactics-server/internal/hexgrid"
)

const defaultHexSize = 32

func main() {
	out, err := run(os.Args[1:], hexSize())
	if err != nil {
		fmt.Println(err)
		printHelp()
		os.Exit(1)
	}
	fmt.Println(out)
}

// hexSize читает HEX_SIZE, иначе размер карты по умолчанию.
func hexSize() float64 {
	if v, err := strconv.ParseFloat(os.Getenv("HEX_SIZE"), 64); err == nil && v > 0 {
		return v
	}
	return defaultHexSize
}

func run(args []string, size float64) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("command is required")
	}
	layout := hexgrid.NewLayout(size)

	switch args[0] {
	case "axial":
		v, err := ints(args[1:], 2)
		if err != nil {
			return "", err
		}
		a := hexgrid.Axial{Q: v[0], R: v[1]}
		return describe(layout, a), nil
	case "offset":
		v, err := ints(args[1:], 2)
		if err != nil {
			return "", err
		}
		a := hexgrid.Offset{Col: v[0], Row: v[1]}.ToAxial()
		return describe(layout, a), nil
	case "world":
		if len(args) != 3 {
			return "", fmt.Errorf("world needs <x> <y>")
		}
		x, errX := strconv.ParseFloat(args[1], 64)
		y, errY := strconv.ParseFloat(args[2], 64)
		if errX != nil || errY != nil {
			return "", fmt.Errorf("invalid point %q %q", args[1], args[2])
		}
		return describe(layout, layout.ToAxial(hexgrid.Point{X: x, Y: y})), nil
	case "dist":
		v, err := ints(args[1:], 4)
		if err != nil {
			return "", err
		}
		d := hexgrid.Distance(hexgrid.Axial{Q: v[0], R: v[1]}, hexgrid.Axial{Q: v[2], R: v[3]})
		return strconv.Itoa(d), nil
	default:
		return "", fmt.Errorf("unknown command %q", args[0])
	}
}

func describe(layout hexgrid.Layout, a hexgrid.Axial) string {
	o := a.ToOffset()
	c := layout.Center(a)
	return fmt.Sprintf("axial(%d,%d) offset(%d,%d) center(%.2f,%.2f)", a.Q, a.R, o.Col, o.Row, c.X, c.Y)
}

func ints(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d integers, got %d", n, len(args))
	}
	out := make([]int, n)
	for i, s := range args {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		out[i] = v
	}
	return out, nil
}

func printHelp() {
	fmt.Println(`Hex Utility - пересчет координат гекс-сетки (flat-top, odd-q)
Commands:
  axial <q> <r>           - offset и центр клетки
  offset <col> <row>      - axial и центр клетки
  world <x> <y>           - клетка под точкой
  dist <q1> <r1> <q2> <r2> - расстояние в шагах
Env:
  HEX_SIZE                - радиус гекса (по умолчанию 32)`)
}
