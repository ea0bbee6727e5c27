package valuesio

import (
	"errors"
	"fmt"

	"stats-tools/cellstats"

	"github.com/airbusgeo/godal"
	"github.com/sirupsen/logrus"
)

type Point struct {
	Lat float64
	Lng float64
}

type BandContainer struct {
	Band   godal.Band
	Origin Point
	XRes   float64
	YRes   float64
}

// ReadRasterBand returns one sample per valid pixel of the 1-based band,
// located at the pixel centre. The raster is assumed to be in EPSG:4326.
func ReadRasterBand(path string, bandNum int) (samples []cellstats.Sample, err error) {
	godal.RegisterAll()

	ds, err := godal.Open(path)
	if err != nil {
		logrus.Error(err)
		return nil, err
	}
	defer func() {
		err = errors.Join(err, ds.Close())
	}()

	bands := ds.Bands()
	if bandNum < 1 || bandNum > len(bands) {
		return nil, fmt.Errorf("band %d out of range, %s has %d bands", bandNum, path, len(bands))
	}

	origin, xRes, yRes, err := getOriginAndResolution(ds)
	if err != nil {
		return nil, err
	}
	band := BandContainer{bands[bandNum-1], origin, xRes, yRes}

	noData, hasNoData := band.Band.NoData()
	if !hasNoData {
		logrus.Warn("NoData not set")
	}

	for block, ok := band.Band.Structure().FirstBlock(), true; ok; block, ok = block.Next() {
		logrus.Infof("Processing block at [%v, %v]", block.X0, block.Y0)
		blockSamples, err := rasterBlockToSamples(&band, block, noData, hasNoData)
		if err != nil {
			return nil, err
		}
		samples = append(samples, blockSamples...)
	}
	return samples, nil
}

func rasterBlockToSamples(band *BandContainer, block godal.Block, noData float64, hasNoData bool) ([]cellstats.Sample, error) {
	origin := blockOrigin(block, band.XRes, band.YRes, band.Origin)
	blockBuf := make([]float64, block.H*block.W)
	if err := band.Band.Read(block.X0, block.Y0, blockBuf, block.W, block.H); err != nil {
		return nil, err
	}

	samples := make([]cellstats.Sample, 0, len(blockBuf))
	for pix, value := range blockBuf {
		if hasNoData && value == noData {
			continue
		}
		// GDAL is row-major
		row := pix / block.W
		col := pix % block.W

		samples = append(samples, cellstats.Sample{
			Lat:   origin.Lat + (float64(row)+0.5)*band.YRes,
			Lng:   origin.Lng + (float64(col)+0.5)*band.XRes,
			Value: value,
		})
	}
	return samples, nil
}

func getOriginAndResolution(ds *godal.Dataset) (Point, float64, float64, error) {
	gt, err := ds.GeoTransform()
	if err != nil {
		logrus.Error(err)
		return Point{}, 0, 0, err
	}
	origin := Point{gt[3], gt[0]}
	xRes := gt[1]
	yRes := gt[5]
	return origin, xRes, yRes, nil
}

func blockOrigin(rasterBlock godal.Block, xRes, yRes float64, origin Point) Point {
	originLng := float64(rasterBlock.X0)*xRes + origin.Lng
	originLat := float64(rasterBlock.Y0)*yRes + origin.Lat
	return Point{originLat, originLng}
}
