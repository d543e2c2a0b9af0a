// Command generate_sample_annotations writes a synthetic raw annotation
// CSV for exercising the QC pipeline locally. The output mixes clean
// agreement groups, deliberate label conflicts, low-confidence rows, and
// malformed rows so every filter and resolution path gets traffic.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
)

var sampleTexts = []string{
	"The delivery arrived two days late",
	"Great battery life on this phone",
	"The app crashes every time I open settings",
	"Customer support resolved my issue quickly",
	"The packaging was damaged on arrival",
	"Screen brightness is too low outdoors",
	"Checkout flow is confusing on mobile",
	"The refund was processed without any hassle",
}

var labels = []string{"positive", "negative", "neutral", "complaint", "praise"}

func main() {
	var (
		groups     = flag.Int("groups", 50, "Number of distinct texts to generate")
		annotators = flag.Int("annotators", 3, "Annotations per text")
		conflict   = flag.Float64("conflict-rate", 0.2, "Fraction of texts given conflicting labels")
		lowConf    = flag.Float64("low-confidence-rate", 0.15, "Fraction of rows below the 0.8 threshold")
		malformed  = flag.Int("malformed", 5, "Number of rows with unparseable confidence scores")
		seed       = flag.Int64("seed", 42, "Random seed")
		outputPath = flag.String("output", "raw_annotations.csv", "Output file path")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	f, err := os.Create(*outputPath)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"text", "annotator_id", "label", "confidence_score"}); err != nil {
		log.Fatalf("Failed to write header: %v", err)
	}

	rows := 0
	for g := 0; g < *groups; g++ {
		text := fmt.Sprintf("%s (case %d)", sampleTexts[g%len(sampleTexts)], g)
		agreed := labels[rng.Intn(len(labels))]
		conflicting := rng.Float64() < *conflict

		for a := 0; a < *annotators; a++ {
			label := agreed
			if conflicting && a > 0 && rng.Float64() < 0.5 {
				label = labels[rng.Intn(len(labels))]
			}

			confidence := 0.8 + rng.Float64()*0.2
			if rng.Float64() < *lowConf {
				confidence = rng.Float64() * 0.8
			}

			row := []string{
				text,
				fmt.Sprintf("annotator_%02d", a+1),
				label,
				strconv.FormatFloat(confidence, 'f', 2, 64),
			}
			if err := w.Write(row); err != nil {
				log.Fatalf("Failed to write row: %v", err)
			}
			rows++
		}
	}

	for m := 0; m < *malformed; m++ {
		row := []string{
			fmt.Sprintf("Malformed confidence sample %d", m),
			"annotator_99",
			labels[rng.Intn(len(labels))],
			"not_a_number",
		}
		if err := w.Write(row); err != nil {
			log.Fatalf("Failed to write row: %v", err)
		}
		rows++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("Failed to flush output: %v", err)
	}

	fmt.Printf("Generated sample annotations:\n")
	fmt.Printf("- Path: %s\n", *outputPath)
	fmt.Printf("- Texts: %d\n", *groups)
	fmt.Printf("- Rows: %d\n", rows)
}
