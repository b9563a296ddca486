package config

// Example usage of the configuration system:
//
// 1. Load configuration with all sources:
//
//     cfg, err := config.Load("", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 2. Load with a custom config file and command line overrides:
//
//     flags := map[string]interface{}{
//         "data-dir":  "./my-dataset",
//         "workers":   4,
//         "log-level": "debug",
//     }
//     cfg, err := config.Load("/path/to/config.yaml", flags)
//
// 3. Environment variables (also read from .env and ~/.imgdataset.env):
//
//     IMGDATASET_DATA_DIR=./data
//     IMGDATASET_TIMEOUT=45s
//     IMGDATASET_WORKERS=2
//     IMGDATASET_SEARCH_URL=https://unsplash.com/s/photos/{query}
//     IMGDATASET_LOG_LEVEL=debug
//
// 4. Example YAML file (.imgdataset.yaml):
//
//     data_dir: ./data
//     download:
//       timeout: 30s
//       workers: 1
//       jpeg_quality: 95
//     collector:
//       search_url: https://unsplash.com/s/photos/{query}
//       limit: 20
//     annotations:
//       file: unsplash.csv
//       format: csv
//     grid:
//       columns: 5
//       cell_size: 200
//       output: grid.jpg
//     logging:
//       level: info
