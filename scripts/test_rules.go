package main

import (
	"fmt"
	"os"
	"strconv"

	"smarthome-sim/internal/engine"
	"smarthome-sim/internal/models"
	"smarthome-sim/internal/store"
)

const defaultTicks = 50

func main() {
	fmt.Println("🚀 Smart Home Rule Tester")
	fmt.Println("=========================")

	// Check if we should run in test mode
	if len(os.Args) > 1 && os.Args[1] == "test" {
		ticks := defaultTicks
		if len(os.Args) > 2 {
			if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
				ticks = n
			}
		}
		runQuickTest(ticks)
		return
	}

	// Interactive mode
	runInteractiveTest()
}

// runQuickTest drives a dark evening so Night Mode has something to do
func runQuickTest(ticks int) {
	fmt.Printf("Running %d ticks headless...\n", ticks)

	initial := store.SeedOptions()
	initial.Sensors[2].Value = 120
	initial.Devices[0].IsOn = false
	eng := engine.New(engine.Options{Seed: 1, Initial: &initial}, nil)

	for i := 0; i < ticks; i++ {
		before := eng.Devices()
		res := eng.Step()
		for j, d := range eng.Devices() {
			if d.IsOn != before[j].IsOn {
				fmt.Printf("tick %3d  %s  %s -> %s (light %.1f)\n",
					res.Tick, res.Point.Time, d.Name, d.StatusLabel(), res.Sensors[2].Value)
			}
		}
	}

	fmt.Println("\nFinal sensors:")
	for _, s := range eng.Sensors() {
		fmt.Printf("  %-22s %8.1f %s (%s)\n", s.Name, s.Value, s.Unit, s.Trend)
	}
	fmt.Println("Final devices:")
	for _, d := range eng.Devices() {
		fmt.Printf("  %-22s %s\n", d.Name, d.StatusLabel())
	}
}

func runInteractiveTest() {
	fmt.Println("Interactive Rule Tester")
	fmt.Println("1. Run simulation ticks")
	fmt.Println("2. Test custom condition")
	fmt.Println("3. Show all rules")
	fmt.Println("4. Exit")

	var choice int
	fmt.Print("Choose option: ")
	fmt.Scanln(&choice)

	switch choice {
	case 1:
		var ticks int
		fmt.Print("Ticks: ")
		fmt.Scanln(&ticks)
		if ticks <= 0 {
			ticks = defaultTicks
		}
		runQuickTest(ticks)
	case 2:
		testCustomCondition()
	case 3:
		showAllRules()
	case 4:
		return
	default:
		fmt.Println("Invalid choice")
	}
}

func testCustomCondition() {
	fmt.Println("Custom Condition Tester")

	var op string
	var actualValue, threshold float64

	fmt.Print("Sensor value: ")
	fmt.Scanln(&actualValue)
	fmt.Print("Operator (gt lt): ")
	fmt.Scanln(&op)
	fmt.Print("Threshold: ")
	fmt.Scanln(&threshold)

	rule := models.AutomationRule{Condition: models.Condition(op), Threshold: threshold}
	fmt.Printf("Result: %t (%v %s %v)\n", rule.Matches(actualValue), actualValue, rule.Condition.Symbol(), threshold)
}

func showAllRules() {
	fmt.Println("Available Rules:")

	sensors, devices := models.SeedSensors(), models.SeedDevices()
	for _, rule := range models.SeedRules() {
		fmt.Printf("- %s (ID: %s, Active: %t)\n  %s\n", rule.Name, rule.ID, rule.Active,
			models.Describe(rule, sensors, devices))
	}
}
