// Package digest validates and summarizes neuroimaging processing status
// files for the Neurobagel digest dashboard.
//
// # Overview
//
// A digest file is a delimited table (CSV or TSV) in which every row
// reports the status of one processing pipeline or assessment run for one
// participant and session. The package checks such tables against a
// schema flavor, reports every violation it finds, and aggregates the
// surviving rows into dataset, pipeline, and assessment summaries.
//
// # Key Types
//
// Digest is the entry point. It holds the registered schema flavors and
// the validation policy, and is safe for concurrent use:
//
//	d, err := digest.New(
//		digest.WithLogger(logger),
//		digest.WithUnrecognizedColumnPolicy(digest.UnrecognizedReject),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// The shared vocabulary lives in the bagel package: records, violations,
// summaries, status values, and the column names of the format.
//
// # Validating a File
//
// Obtain a handle on a flavor and feed it a reader:
//
//	f, err := os.Open("imaging_digest.tsv")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer f.Close()
//
//	sch, err := d.Schema(bagel.FlavorImaging)
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := sch.Validate(f, digest.WithFilename("imaging_digest.tsv"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if !result.Clean() {
//		for _, v := range result.Violations {
//			fmt.Println(v.Error())
//		}
//	}
//	fmt.Printf("%d validated records\n", len(result.Records))
//
// Validate returns an error only when the input cannot be read as a
// table at all. Everything the table does wrong against its schema is
// reported in result.Violations, not as an error.
//
// # Flavors
//
// Two flavors ship builtin:
//
//   - bagel.FlavorImaging: pipeline processing status files
//   - bagel.FlavorPhenotypic: assessment availability files
//
// Additional flavors can be registered from a directory of JSON schema
// definitions:
//
//	d, err := digest.New(digest.WithSchemaDir("/etc/digest/flavors"))
//
// # Summaries
//
// Every result carries an aggregated view of its validated records:
//
//	sum := result.Summary
//	fmt.Printf("participants: %d\n", sum.Dataset.Participants)
//	for _, p := range sum.Pipelines {
//		fmt.Printf("%s: %d records, %d successful\n",
//			p.Label(), p.Records, p.StatusCounts[bagel.StatusSuccess])
//	}
//
// Records from several results can also be re-aggregated directly with
// Aggregate, for example after filtering.
//
// # Filtering
//
// FilterRecords narrows validated records to selected sessions and
// per-pipeline status values before re-aggregation:
//
//	kept := digest.FilterRecords(result.Records, digest.Filter{
//		Sessions: []string{"1", "2"},
//		Operator: digest.FilterAnd,
//		Statuses: map[string][]bagel.StatusValue{
//			"fmriprep-20.2.7": {bagel.StatusSuccess},
//		},
//	})
//	sum := digest.Aggregate(kept)
//
// # Configuration
//
// NewFromConfigFile builds an instance from a YAML file covering the
// schema directory, ingestion limits, the unrecognized column policy,
// and logging:
//
//	d, err := digest.NewFromConfigFile("/etc/digest/config.yaml")
//
// A missing file yields the defaults, so the call is safe to point at an
// optional path.
//
// # Concurrency
//
// A Digest and its Schema handles are safe for concurrent use. Several
// files can be validated in one call with ValidateAll, which runs one
// goroutine per flavor:
//
//	results, err := d.ValidateAll(ctx, map[bagel.Flavor]io.Reader{
//		bagel.FlavorImaging:    imagingFile,
//		bagel.FlavorPhenotypic: phenotypicFile,
//	})
//
// # Error Handling
//
// Structural failures are coded and can be checked with errors.Is
// against the package sentinels:
//
//	_, err := d.Schema("freesurfer")
//	if errors.Is(err, digest.ErrSchemaNotFound) {
//		// Handle the unknown flavor
//	}
//
package digest
